package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/codemarks/codemarks/internal/document"
	"github.com/codemarks/codemarks/internal/index"
	"github.com/codemarks/codemarks/internal/scanner"
	"github.com/codemarks/codemarks/pkg/types"
)

// Scheduler owns the refresh debounce channel and the one-scan-at-a-time
// invariant. It decides whether a refresh runs the workspace scanner
// (scope all) or rescans the active document (scope current), and flips
// the in-flight scan's cancellation when the scope switches away from it.
//
// Scheduler operations never return errors to callers; per-file scan
// failures stay inside the workspace scanner, and misuse (a force-refresh
// while a scan is running) is a logged no-op.
type Scheduler struct {
	store     *index.Store
	workspace *scanner.WorkspaceScanner
	root      string

	refresh *Debouncer
	lock    scanLock

	mu     sync.Mutex
	scope  types.Scope
	cancel context.CancelFunc // in-flight workspace scan, nil when idle
	wg     sync.WaitGroup

	// activeDoc supplies the current document for scope-current rescans.
	activeDoc func() *document.Document

	// onScanDone is an optional callback for test synchronization,
	// invoked after a workspace scan finishes or is canceled.
	onScanDone func(stats *scanner.Statistics, err error)
}

// NewScheduler creates a scheduler over the given store and workspace
// scanner. activeDoc may return nil when no document is active.
func NewScheduler(store *index.Store, workspace *scanner.WorkspaceScanner, root string,
	refreshDelay time.Duration, activeDoc func() *document.Document) *Scheduler {

	s := &Scheduler{
		store:     store,
		workspace: workspace,
		root:      root,
		scope:     types.ScopeCurrent,
		activeDoc: activeDoc,
	}
	s.refresh = NewDebouncer(refreshDelay, s.run)
	return s
}

// Refresh requests a debounced scan. Calls within the debounce window
// collapse into one scan; a call while a scan is already in flight is
// dropped, not queued.
func (s *Scheduler) Refresh() {
	if s.lock.Held() {
		log.Printf("scheduler: refresh dropped, scan in flight")
		return
	}
	s.refresh.Trigger()
}

// ForceRefresh cancels any pending debounce timer and starts a scan
// immediately. A call while a scan is running is a logged no-op.
func (s *Scheduler) ForceRefresh() {
	if s.lock.Held() {
		log.Printf("scheduler: force refresh ignored, scan in flight")
		return
	}
	s.refresh.Force()
}

// SetScope switches between current-document and whole-workspace mode.
// An in-flight workspace scan is canceled at its next checkpoint; the
// index keeps its last successfully committed state. Switching to scope
// current rescans the active document right away, independent of the
// canceled scan.
func (s *Scheduler) SetScope(scope types.Scope) {
	if scope.Validate() != nil {
		log.Printf("scheduler: ignoring invalid scope %q", scope)
		return
	}

	s.mu.Lock()
	changed := s.scope != scope
	s.scope = scope
	if changed && s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if !changed {
		return
	}

	switch scope {
	case types.ScopeCurrent:
		s.scanCurrent()
	case types.ScopeAll:
		s.refresh.Trigger()
	}
}

// Scope returns the scheduler's current scope.
func (s *Scheduler) Scope() types.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// Scanning reports whether a workspace scan is in flight.
func (s *Scheduler) Scanning() bool {
	return s.lock.Held()
}

// Stop cancels pending timers and any in-flight scan, then waits for the
// scan goroutine to exit.
func (s *Scheduler) Stop() {
	s.refresh.Stop()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// run executes one scheduled scan in the mode current at fire time.
func (s *Scheduler) run() {
	s.mu.Lock()
	scope := s.scope
	s.mu.Unlock()

	if scope == types.ScopeCurrent {
		s.scanCurrent()
		return
	}
	s.startWorkspaceScan()
}

// scanCurrent rescans the active document synchronously. Document-level
// rescans are fast and never gated by the workspace scan state.
func (s *Scheduler) scanCurrent() {
	doc := s.activeDoc()
	if doc == nil {
		return
	}
	s.store.ReplaceFile(doc.Path(), scanner.ScanDocument(doc))
}

// startWorkspaceScan launches the workspace scanner on its own goroutine,
// guarded by the scan lock. Results commit in one ReplaceAll only when
// the scan completes without cancellation.
func (s *Scheduler) startWorkspaceScan() {
	if !s.lock.TryAcquire() {
		log.Printf("scheduler: scan already running, not queued")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.cancel = nil
			s.mu.Unlock()
			cancel()
			s.lock.Release()
		}()

		results, stats, err := s.workspace.Scan(ctx, s.root)
		if err != nil {
			log.Printf("scheduler: workspace scan stopped: %v", err)
		} else {
			s.store.ReplaceAll(results)
			log.Printf("scheduler: workspace scan done: %d files, %d annotations in %v",
				stats.FilesScanned+stats.FilesSkipped, stats.Annotations, stats.Duration)
		}

		s.mu.Lock()
		done := s.onScanDone
		s.mu.Unlock()
		if done != nil {
			done(stats, err)
		}
	}()
}

// ErrScanInFlight is returned by ScanNow when a workspace scan is
// already running.
var ErrScanInFlight = errors.New("workspace scan already in flight")

// ScanNow runs a workspace scan synchronously on the calling goroutine,
// committing on success. It respects the one-scan-at-a-time invariant and
// the caller's context; a scope switch during the scan still cancels it.
func (s *Scheduler) ScanNow(ctx context.Context) (*scanner.Statistics, error) {
	if !s.lock.TryAcquire() {
		return nil, ErrScanInFlight
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
		s.lock.Release()
	}()

	results, stats, err := s.workspace.Scan(ctx, s.root)
	if err != nil {
		return nil, err
	}
	s.store.ReplaceAll(results)
	return stats, nil
}

// setOnScanDone registers the scan-completion callback (test support).
func (s *Scheduler) setOnScanDone(fn func(*scanner.Statistics, error)) {
	s.mu.Lock()
	s.onScanDone = fn
	s.mu.Unlock()
}
