// Package driving declares the use-case interfaces the outer surfaces
// (CLI, TUI, MCP server) program against. The implementations live in
// internal/core/services.
package driving
