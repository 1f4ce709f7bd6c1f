// Package resources provides MCP resources for exposing calendar context.
// Resources are read-only data sources that MCP clients can fetch, such as
// the list of available calendars and today's agenda.
package resources
