// Package decoration projects the active document's annotations into
// inline highlight regions for the editor collaborator to render.
package decoration

import (
	"log"

	"github.com/codemarks/codemarks/internal/document"
	"github.com/codemarks/codemarks/internal/extractor"
	"github.com/codemarks/codemarks/pkg/types"
)

// Style identifies the rendering class for one annotation kind
type Style string

const (
	StyleTodo  Style = "codemarks.todo"
	StyleFixme Style = "codemarks.fixme"
	StyleNote  Style = "codemarks.note"
	StyleHack  Style = "codemarks.hack"
	StyleBug   Style = "codemarks.bug"
)

// styleFor maps a kind to its style. The switch is exhaustive over the
// closed Kind enumeration; adding a kind without a style fails here.
func styleFor(kind types.Kind) Style {
	switch kind {
	case types.KindTodo:
		return StyleTodo
	case types.KindFixme:
		return StyleFixme
	case types.KindNote:
		return StyleNote
	case types.KindHack:
		return StyleHack
	case types.KindBug:
		return StyleBug
	default:
		return StyleNote
	}
}

// Decoration is one highlight region: a line span from the marker's start
// column to end of line, keyed by kind for styling.
type Decoration struct {
	Kind        types.Kind
	Style       Style
	Line        int
	StartColumn int
	EndColumn   int
}

// Project maps a document's annotation set to highlight regions.
//
// Line content may have shifted between the index update and render, so
// each annotation is re-matched against its recorded line before a region
// is emitted. Annotations whose recorded line no longer exists, or whose
// line no longer carries a marker of the same kind, are skipped and
// logged; projection never fails.
func Project(doc *document.Document, annotations []types.Annotation) []Decoration {
	decorations := make([]Decoration, 0, len(annotations))
	for _, ann := range annotations {
		if ann.Line >= doc.LineCount() {
			log.Printf("decoration: %s:%d no longer exists, skipping", ann.File, ann.Line)
			continue
		}

		line := doc.Line(ann.Line)
		m, ok := extractor.Extract(line)
		if !ok || m.Kind != ann.Kind {
			log.Printf("decoration: %s:%d content shifted, skipping", ann.File, ann.Line)
			continue
		}

		decorations = append(decorations, Decoration{
			Kind:        ann.Kind,
			Style:       styleFor(ann.Kind),
			Line:        ann.Line,
			StartColumn: m.Column,
			EndColumn:   len(line),
		})
	}
	return decorations
}
