package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemarks/codemarks/internal/config"
	"github.com/codemarks/codemarks/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestScanner() *WorkspaceScanner {
	cfg := config.Default().Scan
	cfg.Workers = 2
	return NewWorkspaceScanner(cfg)
}

func TestScan_TwoFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n// TODO: in a\n")
	writeFile(t, root, "sub/b.go", "package b\n// FIXME: in b\n")
	writeFile(t, root, "clean.go", "package clean\n")

	results, stats, err := newTestScanner().Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, results, 2)
	require.Len(t, results["a.go"], 1)
	assert.Equal(t, types.KindTodo, results["a.go"][0].Kind)
	require.Len(t, results["sub/b.go"], 1)
	assert.Equal(t, types.KindFixme, results["sub/b.go"][0].Kind)

	assert.Equal(t, 3, stats.FilesScanned)
	assert.Equal(t, 2, stats.Annotations)
	assert.Zero(t, stats.FilesFailed)
}

func TestScan_IgnoresExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.go", "// TODO: keep\n")
	writeFile(t, root, "node_modules/skip.js", "// TODO: skip\n")
	writeFile(t, root, "vendor/skip.go", "// TODO: skip\n")
	writeFile(t, root, ".hidden/skip.go", "// TODO: skip\n")

	results, _, err := newTestScanner().Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Contains(t, results, "keep.go")
}

func TestScan_ExtensionAllowList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "code.go", "// TODO: code\n")
	writeFile(t, root, "image.png", "// TODO: not source\n")
	writeFile(t, root, "binary.exe", "// TODO: not source\n")

	results, _, err := newTestScanner().Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Contains(t, results, "code.go")
}

func TestScan_MaxFilesCap(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.go", "b.go", "c.go", "d.go"} {
		writeFile(t, root, name, "// TODO: x\n")
	}

	cfg := config.Default().Scan
	cfg.MaxFiles = 2
	cfg.Workers = 1

	results, stats, err := NewWorkspaceScanner(cfg).Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Equal(t, 2, stats.FilesScanned)
}

func TestScan_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "// TODO: x\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _, err := newTestScanner().Scan(ctx, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// No partial commit material: a canceled scan yields nothing.
	assert.Nil(t, results)
}

func TestScan_UnchangedFilesServedFromCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "// TODO: cached\n")

	ws := newTestScanner()

	_, stats, err := ws.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesScanned)
	assert.Zero(t, stats.FilesSkipped)

	// Second run: content unchanged, extraction skipped, result identical.
	results, stats, err := ws.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Zero(t, stats.FilesScanned)
	assert.Equal(t, 1, stats.FilesSkipped)
	require.Len(t, results["a.go"], 1)
	assert.Equal(t, "cached", results["a.go"][0].Text)

	// Changed content is rescanned.
	writeFile(t, root, "a.go", "// TODO: updated\n")
	results, stats, err = ws.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesScanned)
	assert.Equal(t, "updated", results["a.go"][0].Text)
}

func TestScan_OrderIndependent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.go", "// TODO: z\n")
	writeFile(t, root, "a.go", "// TODO: a\n")
	writeFile(t, root, "m/mid.go", "// NOTE: m\n")

	first, _, err := newTestScanner().Scan(context.Background(), root)
	require.NoError(t, err)
	second, _, err := newTestScanner().Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScan_RelativeSlashPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "nested/deep/x.go", "// HACK: here\n")

	results, _, err := newTestScanner().Scan(context.Background(), root)
	require.NoError(t, err)

	require.Contains(t, results, "nested/deep/x.go")
	assert.Equal(t, "nested/deep/x.go", results["nested/deep/x.go"][0].File)
}
