// Package server implements the MCP (Model Context Protocol) server for core
// column tools.
//
// This package provides a JSON-RPC 2.0 server that exposes core box
// segmentation and depth-registered column operations through the MCP
// protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Segmentation (needs an inference service):
//   - column_segment: Turn one core box photograph into a column
//   - column_segment_many: Segment and stack several photographs
//   - column_layout: Read or change the box layout
//
// Column Operations:
//   - column_info: Shape, depth range and add settings
//   - column_slice: Cut a depth interval into a new column
//   - column_combine: Stack columns shallowest first
//   - column_preview: Render a column as PNG
//   - column_release: Forget a column
//
// Persistence:
//   - column_save: Write blob, image and depth files
//   - column_load: Read them back
//
// # Column Store
//
// Every tool that produces a column keeps it in memory under a fresh UUID and
// returns that id. Later calls refer to columns by id until column_release.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Diagnostics go to the configured logger, never to stdout.
package server
