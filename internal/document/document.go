// Package document models the editor collaborator's view of an open file:
// line-addressable text plus the edit descriptors change events carry.
package document

import "strings"

// Document is an immutable-by-convention snapshot of one open file's text.
// The engine never mutates a Document; the editor collaborator hands over
// a fresh snapshot (or calls SetText) whenever content changes.
type Document struct {
	path    string
	lines   []string
	version int
}

// New creates a document snapshot from full file content.
func New(path, content string) *Document {
	return &Document{path: path, lines: splitLines(content)}
}

// Path returns the document's file path.
func (d *Document) Path() string { return d.path }

// Version returns the snapshot's monotonically increasing edit version.
func (d *Document) Version() int { return d.version }

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns the 0-based line i, or "" when i is out of range.
// Out-of-range reads are legal: the decoration projector probes lines
// that may no longer exist.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// SetText replaces the document's content in one step and bumps the
// version counter.
func (d *Document) SetText(content string) {
	d.lines = splitLines(content)
	d.version++
}

// Text reassembles the document's full content.
func (d *Document) Text() string {
	return strings.Join(d.lines, "\n")
}

// splitLines splits content on \n, tolerating \r\n line endings.
// An empty document has one empty line, matching editor semantics.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
