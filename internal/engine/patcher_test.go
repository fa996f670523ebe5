package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemarks/codemarks/internal/document"
	"github.com/codemarks/codemarks/internal/index"
	"github.com/codemarks/codemarks/internal/scanner"
	"github.com/codemarks/codemarks/pkg/types"
)

// patchFixture builds a store seeded with a full scan of content and a
// patcher with a short debounce for tests.
func patchFixture(t *testing.T, path, content string) (*index.Store, *patcher, *document.Document) {
	t.Helper()

	doc := document.New(path, content)
	store := index.NewStore()
	store.ReplaceFile(path, scanner.ScanDocument(doc))

	p := newPatcher(store, 10*time.Millisecond)
	t.Cleanup(p.stop)
	return store, p, doc
}

// applied returns a channel that receives the patched path once per commit.
func applied(p *patcher) chan string {
	ch := make(chan string, 16)
	p.onApplied = func(path string) { ch <- path }
	return ch
}

func waitPatch(t *testing.T, ch chan string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("patch did not apply")
	}
}

func TestPatch_EqualsFullRescan_Insertion(t *testing.T) {
	// Annotations on lines 1, 5, 9.
	lines := make([]string, 14)
	for i := range lines {
		lines[i] = "plain()"
	}
	lines[1] = "// TODO: one"
	lines[5] = "// FIXME: two"
	lines[9] = "// NOTE: three"
	store, p, doc := patchFixture(t, "a.go", strings.Join(lines, "\n"))
	done := applied(p)

	// Insert 3 new lines before line 5, one carrying a new BUG marker.
	edited := append([]string{}, lines[:5]...)
	edited = append(edited, "spacer()", "// BUG: x", "spacer()")
	edited = append(edited, lines[5:]...)
	doc.SetText(strings.Join(edited, "\n"))

	p.schedule(doc, []types.Edit{{StartLine: 5, EndLine: 7, InsertedLines: 3}})
	waitPatch(t, done)

	got := store.File("a.go")
	want := scanner.ScanDocument(doc)
	require.Len(t, want, 4)
	assert.Equal(t, want, got)
}

func TestPatch_EqualsFullRescan_SingleLineEdit(t *testing.T) {
	store, p, doc := patchFixture(t, "b.go", "x()\n// TODO: old text\ny()\n")
	done := applied(p)

	doc.SetText("x()\n// TODO: new text\ny()\n")
	p.schedule(doc, []types.Edit{{StartLine: 1, EndLine: 1, InsertedLines: 1}})
	waitPatch(t, done)

	got := store.File("b.go")
	require.Len(t, got, 1)
	assert.Equal(t, "new text", got[0].Text)
	assert.Equal(t, scanner.ScanDocument(doc), got)
}

func TestPatch_RemovesDeletedAnnotation(t *testing.T) {
	store, p, doc := patchFixture(t, "c.go", "a()\n// TODO: doomed\nb()\n")
	done := applied(p)

	doc.SetText("a()\nnothing here\nb()\n")
	p.schedule(doc, []types.Edit{{StartLine: 1, EndLine: 1, InsertedLines: 1}})
	waitPatch(t, done)

	assert.Empty(t, store.File("c.go"))
}

func TestPatch_CoalescesRapidEdits(t *testing.T) {
	doc := document.New("d.go", "start()\n")
	store := index.NewStore()
	store.ReplaceFile("d.go", scanner.ScanDocument(doc))
	p := newPatcher(store, 80*time.Millisecond)
	t.Cleanup(p.stop)
	done := applied(p)

	// Simulate keystrokes: each change reschedules within the window.
	var commits int
	for i := 0; i < 5; i++ {
		doc.SetText("start()\n// TODO: typing\n")
		p.schedule(doc, []types.Edit{{StartLine: 1, EndLine: 1, InsertedLines: 1}})
		time.Sleep(5 * time.Millisecond)
	}
	waitPatch(t, done)
	commits++

	// No further commits after the burst settles.
	select {
	case <-done:
		commits++
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, commits)

	got := store.File("d.go")
	require.Len(t, got, 1)
	assert.Equal(t, "typing", got[0].Text)
}

func TestPatch_LeavesOtherLinesAlone(t *testing.T) {
	store, p, doc := patchFixture(t, "e.go", strings.Repeat("pad()\n", 30)+"// TODO: far away\n")
	done := applied(p)

	// An edit near the top must not disturb the annotation at line 30.
	doc.SetText("// HACK: top\n" + strings.Repeat("pad()\n", 29) + "// TODO: far away\n")
	p.schedule(doc, []types.Edit{{StartLine: 0, EndLine: 0, InsertedLines: 1}})
	waitPatch(t, done)

	got := store.File("e.go")
	require.Len(t, got, 2)
	assert.Equal(t, types.KindHack, got[0].Kind)
	assert.Equal(t, 0, got[0].Line)
	assert.Equal(t, types.KindTodo, got[1].Kind)
	assert.Equal(t, 30, got[1].Line)
	assert.Equal(t, scanner.ScanDocument(doc), got)
}

func TestPatch_Settle(t *testing.T) {
	store, p, doc := patchFixture(t, "f.go", "x()\n")
	p.delay = time.Hour // never fires on its own

	doc.SetText("// BUG: now\n")
	p.schedule(doc, []types.Edit{{StartLine: 0, EndLine: 0, InsertedLines: 1}})

	p.settle()
	got := store.File("f.go")
	require.Len(t, got, 1)
	assert.Equal(t, types.KindBug, got[0].Kind)
}

func TestPatch_MultipleDocumentsIndependent(t *testing.T) {
	store := index.NewStore()
	p := newPatcher(store, 10*time.Millisecond)
	t.Cleanup(p.stop)
	done := applied(p)

	docA := document.New("a.go", "// TODO: a\n")
	docB := document.New("b.go", "// TODO: b\n")
	p.schedule(docA, []types.Edit{{StartLine: 0, EndLine: 0, InsertedLines: 1}})
	p.schedule(docB, []types.Edit{{StartLine: 0, EndLine: 0, InsertedLines: 1}})

	waitPatch(t, done)
	waitPatch(t, done)

	assert.Len(t, store.File("a.go"), 1)
	assert.Len(t, store.File("b.go"), 1)
}
