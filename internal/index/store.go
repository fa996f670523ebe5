package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codemarks/codemarks/pkg/types"
)

// queryCacheSize bounds the memoized query results. Entries from older
// generations age out through normal LRU eviction.
const queryCacheSize = 256

// Store holds the per-file annotation sets and serves scoped, filtered
// views of them. All mutations are single critical sections, so readers
// observe each file's set either entirely before or entirely after a
// replace, never in between.
type Store struct {
	mu         sync.RWMutex
	files      map[string][]types.Annotation
	active     string
	generation uint64

	cache *lru.Cache[string, []types.Annotation]

	subMu sync.Mutex
	subs  []func()
}

// NewStore creates an empty annotation store.
func NewStore() *Store {
	cache, err := lru.New[string, []types.Annotation](queryCacheSize)
	if err != nil {
		// Unreachable with a positive size.
		panic(fmt.Sprintf("failed to create query cache: %v", err))
	}
	return &Store{
		files: make(map[string][]types.Annotation),
		cache: cache,
	}
}

// ReplaceFile atomically swaps the annotation set for one file.
// Used by the document scanner and the incremental line patcher.
func (s *Store) ReplaceFile(path string, annotations []types.Annotation) {
	s.mu.Lock()
	s.files[path] = sortSet(annotations)
	s.generation++
	s.mu.Unlock()

	s.notify()
}

// ReplaceAll atomically swaps every file's set. Only a successfully
// completed workspace scan calls this; a canceled scan commits nothing.
func (s *Store) ReplaceAll(perFile map[string][]types.Annotation) {
	next := make(map[string][]types.Annotation, len(perFile))
	for path, anns := range perFile {
		next[path] = sortSet(anns)
	}

	s.mu.Lock()
	s.files = next
	s.generation++
	s.mu.Unlock()

	s.notify()
}

// SetActive records which document is active; ScopeCurrent queries are
// served from its entry.
func (s *Store) SetActive(path string) {
	s.mu.Lock()
	changed := s.active != path
	s.active = path
	if changed {
		s.generation++
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Active returns the active document's path, or "" when none is set.
func (s *Store) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// File returns a copy of one file's annotation set.
func (s *Store) File(path string) []types.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Annotation(nil), s.files[path]...)
}

// Query returns annotations for the requested scope, optionally filtered
// by a case-insensitive substring match against annotation text, file
// path, or kind name. Results are ordered by (file, line, column) so the
// outcome never depends on enumeration order during scanning.
func (s *Store) Query(scope types.Scope, textFilter string) []types.Annotation {
	s.mu.RLock()
	key := fmt.Sprintf("%d|%s|%s|%s", s.generation, scope, s.active, strings.ToLower(textFilter))
	if cached, ok := s.cache.Get(key); ok {
		s.mu.RUnlock()
		return cached
	}

	var result []types.Annotation
	switch scope {
	case types.ScopeCurrent:
		result = append(result, s.files[s.active]...)
	default:
		paths := make([]string, 0, len(s.files))
		for path := range s.files {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			result = append(result, s.files[path]...)
		}
	}
	s.mu.RUnlock()

	if textFilter != "" {
		result = filterAnnotations(result, textFilter)
	}

	s.cache.Add(key, result)
	return result
}

// GroupByKind splits an ordered annotation list into per-kind sublists,
// preserving order of appearance within each kind.
func GroupByKind(annotations []types.Annotation) map[types.Kind][]types.Annotation {
	groups := make(map[types.Kind][]types.Annotation)
	for _, ann := range annotations {
		groups[ann.Kind] = append(groups[ann.Kind], ann)
	}
	return groups
}

// Stats summarizes the store's contents for status reporting
type Stats struct {
	Files       int
	Annotations int
}

// Statistics returns current file and annotation counts.
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Files: len(s.files)}
	for _, anns := range s.files {
		st.Annotations += len(anns)
	}
	return st
}

// Subscribe registers a callback fired after every successful index
// mutation. The notification carries no payload; consumers re-query.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}

// Clear drops every file entry, the active document, and all listeners.
func (s *Store) Clear() {
	s.mu.Lock()
	s.files = make(map[string][]types.Annotation)
	s.active = ""
	s.generation++
	s.mu.Unlock()

	s.subMu.Lock()
	s.subs = nil
	s.subMu.Unlock()

	s.cache.Purge()
}

// notify fires subscribers outside the store lock so a callback may
// re-enter Query without deadlocking.
func (s *Store) notify() {
	s.subMu.Lock()
	subs := append([]func(){}, s.subs...)
	s.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// sortSet orders a set by (line, column) and returns a defensive copy.
func sortSet(annotations []types.Annotation) []types.Annotation {
	set := append([]types.Annotation(nil), annotations...)
	sort.SliceStable(set, func(i, j int) bool {
		if set[i].Line != set[j].Line {
			return set[i].Line < set[j].Line
		}
		return set[i].Column < set[j].Column
	})
	return set
}

// filterAnnotations keeps annotations whose text, file path, or kind name
// contains the filter, case-insensitively.
func filterAnnotations(annotations []types.Annotation, filter string) []types.Annotation {
	needle := strings.ToLower(filter)
	var kept []types.Annotation
	for _, ann := range annotations {
		if strings.Contains(strings.ToLower(ann.Text), needle) ||
			strings.Contains(strings.ToLower(ann.File), needle) ||
			strings.Contains(strings.ToLower(string(ann.Kind)), needle) {
			kept = append(kept, ann)
		}
	}
	return kept
}
