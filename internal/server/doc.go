// Package server implements the MCP (Model Context Protocol) front-end of the
// OCR gateway.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line, and
// exposes the same pipeline as the HTTP API: uploads read from disk go
// through validation, the result cache and single-flight recognition.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - ocr_extract_text: Recognize one file (validated and cached)
//   - ocr_batch_extract: Recognize up to the batch limit of files in order
//   - ocr_cache_stats: Result cache counters
//
// The declared MIME type of a file comes from its extension; files without a
// known extension are sniffed.
//
// # Error Handling
//
// Bad arguments and unknown tools return -32602. Failed extractions return
// -32000 with the same message the HTTP API would put in its error body.
package server
