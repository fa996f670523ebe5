package scanner

import (
	"github.com/codemarks/codemarks/internal/document"
	"github.com/codemarks/codemarks/internal/extractor"
	"github.com/codemarks/codemarks/pkg/types"
)

// ScanDocument produces the full annotation set for one document by
// running every line through the extractor. It cannot fail; the caller
// commits the result with a single index.ReplaceFile.
func ScanDocument(doc *document.Document) []types.Annotation {
	var annotations []types.Annotation
	for i := 0; i < doc.LineCount(); i++ {
		if ann, ok := extractor.ExtractLine(doc.Path(), i, doc.Line(i)); ok {
			annotations = append(annotations, ann)
		}
	}
	return annotations
}

// ScanLines rescans exactly the given line numbers of a document,
// returning annotations found on those lines. Out-of-range lines yield
// nothing. This is the incremental patcher's half of the shared line
// logic.
func ScanLines(doc *document.Document, lines []int) []types.Annotation {
	var annotations []types.Annotation
	for _, i := range lines {
		if i < 0 || i >= doc.LineCount() {
			continue
		}
		if ann, ok := extractor.ExtractLine(doc.Path(), i, doc.Line(i)); ok {
			annotations = append(annotations, ann)
		}
	}
	return annotations
}
