// Package mcp exposes the annotation engine over the Model Context
// Protocol on stdio.
//
// Four tools are registered: scan_workspace runs a synchronous workspace
// scan, query_annotations serves scoped and filtered views of the index,
// set_scope switches between active-document and workspace mode, and
// get_status reports index contents. Stdout is reserved for the protocol;
// all logging goes to stderr.
package mcp
