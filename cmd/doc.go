// Package cmd implements the command-line interface for calagent.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide calendar tools for AI assistants
//   - free: List free time slots on a calendar
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
