package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/codemarks/codemarks/internal/document"
	"github.com/codemarks/codemarks/internal/index"
	"github.com/codemarks/codemarks/internal/scanner"
	"github.com/codemarks/codemarks/pkg/types"
)

// minWindowPadding is the smallest downward reach of an edit window.
// The generous padding absorbs line-number shifts from multi-line
// insertions and deletions without rescanning the whole file.
const minWindowPadding = 5

// pendingPatch accumulates the affected-line set for one document while
// its debounce timer runs.
type pendingPatch struct {
	doc       *document.Document
	lines     map[int]struct{}
	debouncer *Debouncer
}

// patcher keeps per-file annotation sets correct after small edits by
// rescanning only a padded window of lines around each change. Each open
// document gets its own debounce channel so rapid keystrokes coalesce
// into a single patch.
type patcher struct {
	store *index.Store
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingPatch
	stopped bool

	// onApplied is an optional callback for test synchronization,
	// invoked after a patch commits.
	onApplied func(path string)
}

func newPatcher(store *index.Store, delay time.Duration) *patcher {
	return &patcher{
		store:   store,
		delay:   delay,
		pending: make(map[string]*pendingPatch),
	}
}

// schedule records the affected-line windows for a batch of edits and
// (re)arms the document's debounce timer. The document pointer is kept
// current so the eventual rescan reads post-edit text.
func (p *patcher) schedule(doc *document.Document, edits []types.Edit) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}

	path := doc.Path()
	pd, ok := p.pending[path]
	if !ok {
		pd = &pendingPatch{lines: make(map[int]struct{})}
		pd.debouncer = NewDebouncer(p.delay, func() { p.flush(path) })
		p.pending[path] = pd
	}
	pd.doc = doc

	last := doc.LineCount() - 1
	for _, e := range edits {
		if e.Validate() != nil {
			continue
		}
		lo := max(0, e.StartLine-1)
		hi := min(last, e.EndLine+max(minWindowPadding, e.InsertedLines))
		for line := lo; line <= hi; line++ {
			pd.lines[line] = struct{}{}
		}
	}

	deb := pd.debouncer
	p.mu.Unlock()

	deb.Trigger()
}

// flush applies one document's accumulated patch: drop stored annotations
// on the affected lines, re-extract exactly those lines from current text,
// and commit the merged set in a single replace.
func (p *patcher) flush(path string) {
	p.mu.Lock()
	pd, ok := p.pending[path]
	if !ok || len(pd.lines) == 0 {
		p.mu.Unlock()
		return
	}
	doc := pd.doc
	lines := pd.lines
	pd.lines = make(map[int]struct{})
	onApplied := p.onApplied
	p.mu.Unlock()

	affected := make([]int, 0, len(lines))
	for line := range lines {
		affected = append(affected, line)
	}
	sort.Ints(affected)

	merged := make([]types.Annotation, 0)
	for _, ann := range p.store.File(path) {
		if _, hit := lines[ann.Line]; !hit {
			merged = append(merged, ann)
		}
	}
	merged = append(merged, scanner.ScanLines(doc, affected)...)

	p.store.ReplaceFile(path, merged)

	if onApplied != nil {
		onApplied(path)
	}
}

// settle forces every pending patch to apply now. Used by save handling
// and by tests that need the debounce window collapsed.
func (p *patcher) settle() {
	p.mu.Lock()
	debs := make([]*Debouncer, 0, len(p.pending))
	for _, pd := range p.pending {
		debs = append(debs, pd.debouncer)
	}
	p.mu.Unlock()

	for _, d := range debs {
		d.Force()
	}
}

// stop retires every per-document debouncer.
func (p *patcher) stop() {
	p.mu.Lock()
	p.stopped = true
	debs := make([]*Debouncer, 0, len(p.pending))
	for _, pd := range p.pending {
		debs = append(debs, pd.debouncer)
	}
	p.pending = make(map[string]*pendingPatch)
	p.mu.Unlock()

	for _, d := range debs {
		d.Stop()
	}
}
