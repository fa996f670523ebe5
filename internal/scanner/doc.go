// Package scanner derives annotation sets from documents and workspaces.
//
// ScanDocument handles one open document; WorkspaceScanner walks a project
// root in batches on a bounded worker pool, with cooperative cancellation
// and an xxhash-keyed cache that lets unchanged files skip re-extraction.
// Both paths share the same per-line extraction, so a document rescan and
// a workspace pass can never disagree about a file's contents.
//
// A canceled workspace scan returns no results at all; commit is all or
// nothing and belongs to the caller.
package scanner
