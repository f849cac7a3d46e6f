// Package mcpserver implements the Model Context Protocol (MCP) server
// that exposes the retrieval pipeline to AI coding assistants over stdio.
//
// Tools:
//   - index_codebase: (re)build a project's Code Graph
//   - retrieve_context: run the full pipeline (resolve -> build context ->
//     evaluate, widening under a bounded iteration cap) and return the
//     packed dependency-aware context
//   - get_status: report graph size (node and edge counts) for a project;
//     overlay state is not reported
//
// The server communicates over stdin/stdout per the MCP stdio transport;
// diagnostic logging goes to stderr, matching the teacher's convention.
package mcpserver
