package engine

import (
	"context"
	"sync"
	"time"

	"github.com/codemarks/codemarks/internal/config"
	"github.com/codemarks/codemarks/internal/decoration"
	"github.com/codemarks/codemarks/internal/document"
	"github.com/codemarks/codemarks/internal/index"
	"github.com/codemarks/codemarks/internal/scanner"
	"github.com/codemarks/codemarks/pkg/types"
)

// Engine is the public surface of the annotation indexing core. UI
// collaborators query and command it; the editor-document collaborator
// feeds it open/change/save/active events.
//
// Each Engine instance carries its own scope, store, and timers, so
// several engines can run side by side.
type Engine struct {
	cfg   *config.Config
	root  string
	store *index.Store
	sched *Scheduler
	patch *patcher

	mu     sync.Mutex
	docs   map[string]*document.Document
	active *document.Document
	decors []decoration.Decoration
}

// New creates an engine rooted at the given workspace directory.
func New(root string, cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}

	e := &Engine{
		cfg:   cfg,
		root:  root,
		store: index.NewStore(),
		docs:  make(map[string]*document.Document),
	}

	workspace := scanner.NewWorkspaceScanner(cfg.Scan)
	e.sched = NewScheduler(e.store, workspace, root,
		time.Duration(cfg.Timer.RefreshDebounceMs)*time.Millisecond, e.activeDocument)
	e.patch = newPatcher(e.store, time.Duration(cfg.Timer.PatchDebounceMs)*time.Millisecond)

	// Decorations track every successful index mutation.
	e.store.Subscribe(e.project)

	return e
}

// HandleOpen registers a newly opened document and scans it in full.
func (e *Engine) HandleOpen(doc *document.Document) {
	e.mu.Lock()
	e.docs[doc.Path()] = doc
	e.mu.Unlock()

	e.store.ReplaceFile(doc.Path(), scanner.ScanDocument(doc))
}

// HandleChange records edit descriptors for an open document; the
// incremental patch applies after the per-document debounce settles.
func (e *Engine) HandleChange(doc *document.Document, edits []types.Edit) {
	e.mu.Lock()
	e.docs[doc.Path()] = doc
	e.mu.Unlock()

	e.patch.schedule(doc, edits)
}

// HandleSave replaces the document's set with a full rescan.
func (e *Engine) HandleSave(doc *document.Document) {
	e.mu.Lock()
	e.docs[doc.Path()] = doc
	e.mu.Unlock()

	e.store.ReplaceFile(doc.Path(), scanner.ScanDocument(doc))
}

// HandleClose forgets the document object. Its annotation set is left
// stale in the index until a later workspace scan overwrites it.
func (e *Engine) HandleClose(path string) {
	e.mu.Lock()
	delete(e.docs, path)
	if e.active != nil && e.active.Path() == path {
		e.active = nil
	}
	e.mu.Unlock()
}

// SetActiveDocument switches the document that scope-current queries and
// decorations target, scanning it on first sight.
func (e *Engine) SetActiveDocument(doc *document.Document) {
	e.mu.Lock()
	e.active = doc
	_, known := e.docs[doc.Path()]
	e.docs[doc.Path()] = doc
	e.mu.Unlock()

	if !known {
		e.store.ReplaceFile(doc.Path(), scanner.ScanDocument(doc))
	}
	e.store.SetActive(doc.Path())
}

// SetScope switches between current-document and whole-workspace mode.
func (e *Engine) SetScope(scope types.Scope) {
	e.sched.SetScope(scope)
}

// Scope returns the engine's current scope.
func (e *Engine) Scope() types.Scope {
	return e.sched.Scope()
}

// Refresh requests a debounced rescan of the current scope.
func (e *Engine) Refresh() {
	e.sched.Refresh()
}

// ForceRefresh starts a rescan immediately, skipping the debounce window.
func (e *Engine) ForceRefresh() {
	e.sched.ForceRefresh()
}

// ScanWorkspace runs a workspace scan synchronously and returns its
// statistics. ErrScanInFlight is returned when one is already running.
func (e *Engine) ScanWorkspace(ctx context.Context) (*scanner.Statistics, error) {
	return e.sched.ScanNow(ctx)
}

// Query returns annotations for the given scope, optionally filtered by a
// case-insensitive substring over text, file path, and kind.
func (e *Engine) Query(scope types.Scope, textFilter string) []types.Annotation {
	return e.store.Query(scope, textFilter)
}

// QueryGrouped returns the same view grouped by kind, ordered by
// appearance within each group.
func (e *Engine) QueryGrouped(scope types.Scope, textFilter string) map[types.Kind][]types.Annotation {
	return index.GroupByKind(e.store.Query(scope, textFilter))
}

// Decorations returns highlight regions for the active document as of the
// last index mutation.
func (e *Engine) Decorations() []decoration.Decoration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]decoration.Decoration(nil), e.decors...)
}

// Subscribe registers a no-payload callback fired after every successful
// index mutation; consumers re-query.
func (e *Engine) Subscribe(fn func()) {
	e.store.Subscribe(fn)
}

// Statistics reports current index contents.
func (e *Engine) Statistics() index.Stats {
	return e.store.Statistics()
}

// Settle forces every pending debounce channel to fire now: pending
// patches apply and a pending refresh starts. Exposed for save-and-exit
// paths and tests.
func (e *Engine) Settle() {
	e.patch.settle()
}

// Dispose stops all timers, cancels any in-flight scan, and clears the
// in-memory index. The engine must not be used afterwards.
func (e *Engine) Dispose() {
	e.sched.Stop()
	e.patch.stop()
	e.store.Clear()

	e.mu.Lock()
	e.docs = make(map[string]*document.Document)
	e.active = nil
	e.decors = nil
	e.mu.Unlock()
}

// activeDocument is the scheduler's view of the active document.
func (e *Engine) activeDocument() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// project recomputes decorations for the active document.
func (e *Engine) project() {
	e.mu.Lock()
	doc := e.active
	e.mu.Unlock()

	var decors []decoration.Decoration
	if doc != nil {
		decors = decoration.Project(doc, e.store.File(doc.Path()))
	}

	e.mu.Lock()
	e.decors = decors
	e.mu.Unlock()
}
