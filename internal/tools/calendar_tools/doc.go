// Package calendar_tools provides MCP (Model Context Protocol) tools for calendar operations.
//
// This package exposes Google Calendar functionality through a standardized MCP interface,
// allowing AI assistants to manage calendars, events, and scheduling on behalf of users.
// All calendar traffic goes through an authenticating proxy rather than hitting the
// Google API directly, so no OAuth credentials ever live in this process.
//
// The tools cover calendar listing, event CRUD, search, free-slot discovery, bulk
// operations and LLM-backed assistance (summaries, schedule analysis, briefings).
// Write tools are only registered when the server runs with writes enabled.
package calendar_tools
