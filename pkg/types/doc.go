// Package types provides shared type definitions for the codemarks engine.
//
// This package defines the domain vocabulary used across components:
// annotations, annotation kinds, scan scope, and edit descriptors.
//
// # Core Types
//
// Annotation represents a structured inline marker (TODO, FIXME, NOTE,
// HACK, BUG) extracted from a single source line:
//
//	ann := types.Annotation{
//	    Kind:   types.KindTodo,
//	    Text:   "fix this",
//	    File:   "internal/engine/scheduler.go",
//	    Line:   41,
//	    Column: 8,
//	}
//
// Kind is a closed enumeration. Code that branches on kinds should switch
// over all five constants so the compiler surfaces missing cases when the
// set changes:
//
//	switch ann.Kind {
//	case types.KindTodo, types.KindFixme, types.KindNote, types.KindHack, types.KindBug:
//	    ...
//	}
//
// Scope selects between the active document (ScopeCurrent) and the whole
// workspace (ScopeAll) for both queries and scans.
//
// # Validation
//
// Domain types implement validation methods to ensure data integrity:
//
//	if err := ann.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types
