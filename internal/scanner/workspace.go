package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/codemarks/codemarks/internal/config"
	"github.com/codemarks/codemarks/internal/document"
	"github.com/codemarks/codemarks/pkg/types"
)

// hashCacheSize bounds the unchanged-file cache across scan runs
const hashCacheSize = 8192

// errFileLimit stops the walk once the max-file cap is reached
var errFileLimit = fmt.Errorf("file limit reached")

// Statistics describes one completed workspace scan
type Statistics struct {
	FilesScanned  int
	FilesSkipped  int // unchanged since the previous run, served from cache
	FilesFailed   int
	Annotations   int
	Duration      time.Duration
	ErrorMessages []string
}

// cachedFile is a previous run's result for one path, keyed by content hash
type cachedFile struct {
	hash        uint64
	annotations []types.Annotation
}

// WorkspaceScanner discovers and scans files across a project root.
// A scanner is safe to reuse across runs; the hash cache lets unchanged
// files skip re-extraction.
type WorkspaceScanner struct {
	cfg   config.ScanConfig
	cache *lru.Cache[string, cachedFile]
}

// NewWorkspaceScanner creates a scanner with the given scan configuration.
func NewWorkspaceScanner(cfg config.ScanConfig) *WorkspaceScanner {
	cache, err := lru.New[string, cachedFile](hashCacheSize)
	if err != nil {
		// Unreachable with a positive size.
		panic(fmt.Sprintf("failed to create hash cache: %v", err))
	}
	return &WorkspaceScanner{cfg: cfg, cache: cache}
}

// Scan enumerates files under root and extracts annotations from each.
// Cancellation is cooperative: the context is checked between batches and
// between files, and a canceled scan returns ctx.Err() with no results,
// so the caller commits nothing. Per-file read errors are logged, counted,
// and skipped; they never abort the scan.
func (ws *WorkspaceScanner) Scan(ctx context.Context, root string) (map[string][]types.Annotation, *Statistics, error) {
	start := time.Now()

	files, err := ws.discoverFiles(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover files: %w", err)
	}

	var (
		scanned int32
		skipped int32
		failed  int32
		total   int32
	)

	results := make(map[string][]types.Annotation)
	var resultsMu sync.Mutex

	stats := &Statistics{}
	var errsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ws.cfg.Workers)

	for i := 0; i < len(files); i += ws.cfg.BatchSize {
		end := min(i+ws.cfg.BatchSize, len(files))
		batch := files[i:end]

		g.Go(func() error {
			for _, path := range batch {
				if err := gctx.Err(); err != nil {
					return err
				}

				anns, fromCache, err := ws.scanFile(root, path)
				if err != nil {
					atomic.AddInt32(&failed, 1)
					errsMu.Lock()
					stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
					errsMu.Unlock()
					log.Printf("scan: skipping %s: %v", path, err)
					continue
				}

				if fromCache {
					atomic.AddInt32(&skipped, 1)
				} else {
					atomic.AddInt32(&scanned, 1)
				}

				if len(anns) > 0 {
					atomic.AddInt32(&total, int32(len(anns)))
					rel := anns[0].File
					resultsMu.Lock()
					results[rel] = anns
					resultsMu.Unlock()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Canceled mid-scan: discard everything collected so far.
		return nil, nil, err
	}

	stats.FilesScanned = int(scanned)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.Annotations = int(total)
	stats.Duration = time.Since(start)
	return results, stats, nil
}

// scanFile reads and extracts one file, consulting the hash cache first.
// Annotations carry the slash-separated path relative to root.
func (ws *WorkspaceScanner) scanFile(root, path string) ([]types.Annotation, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	hash := xxhash.Sum64(data)
	if entry, ok := ws.cache.Get(path); ok && entry.hash == hash {
		return entry.annotations, true, nil
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	anns := ScanDocument(document.New(rel, string(data)))
	ws.cache.Add(path, cachedFile{hash: hash, annotations: anns})
	return anns, false, nil
}

// discoverFiles walks root collecting files that pass the extension
// allow-list and the ignore globs, capped at MaxFiles.
func (ws *WorkspaceScanner) discoverFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory entry: skip it, keep walking.
			log.Printf("scan: cannot access %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || ws.ignored(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if !ws.allowedExtension(path) || ws.ignored(rel) {
			return nil
		}

		files = append(files, path)
		if len(files) >= ws.cfg.MaxFiles {
			return errFileLimit
		}
		return nil
	})

	if err != nil && err != errFileLimit {
		return nil, err
	}
	return files, nil
}

// allowedExtension checks the extension allow-list.
func (ws *WorkspaceScanner) allowedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range ws.cfg.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ignored matches a root-relative slash path against the ignore globs.
// Directory paths are probed with a trailing slash plus wildcard so that
// "**/node_modules/**" prunes the whole subtree.
func (ws *WorkspaceScanner) ignored(rel string) bool {
	probe := rel
	if strings.HasSuffix(rel, "/") {
		probe = rel + "x"
	}
	for _, glob := range ws.cfg.IgnoreGlobs {
		if ok, err := doublestar.Match(glob, probe); err == nil && ok {
			return true
		}
	}
	return false
}
