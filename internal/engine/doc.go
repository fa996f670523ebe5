// Package engine coordinates annotation scanning against live editing
// activity: debounced scheduling, cooperative cancellation of workspace
// scans, and incremental line-range patching of the shared index.
//
// # Scheduling
//
// Two independent debounce channels exist and are never conflated:
//
//   - the refresh channel (default 500ms) collapses bursts of Refresh
//     calls into one scan of the current scope;
//   - a per-document patch channel (default 100ms) coalesces keystrokes
//     into one incremental patch.
//
// At most one workspace scan runs at a time; a refresh that arrives while
// one is in flight is dropped, not queued. Callers needing guaranteed
// execution use ForceRefresh after the scan finishes. Document-level
// rescans and patches are never gated by the workspace scan state.
//
// # Consistency
//
// A file's indexed set always reflects its most recently completed full
// scan plus any incremental patches applied after it. Workspace scan
// results commit in a single atomic swap only on successful completion;
// cancellation (scope switch, dispose) leaves the index at its last
// committed state. After a patch channel settles, the patched set is
// identical to what a full rescan of the same document text would
// produce, because both paths share internal/extractor line by line.
package engine
