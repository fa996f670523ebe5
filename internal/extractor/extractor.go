package extractor

import (
	"regexp"
	"strings"

	"github.com/codemarks/codemarks/pkg/types"
)

// markerPattern anchors at line start: optional indentation, a comment
// opener, the marker keyword, an optional "(author)" group, an optional
// colon, then free text to end of line. One annotation per physical line,
// first match wins; every scanner in the engine applies this same pattern
// so incremental patches and bulk scans can never disagree.
var markerPattern = regexp.MustCompile(
	`^([ \t]*)(?://|/\*|\*|<!--|#)[ \t]*(?i:(TODO|FIXME|NOTE|HACK|BUG))(?:\(([^)]*)\))?:?[ \t]*(.*)$`,
)

// Match is the result of extracting an annotation from one line
type Match struct {
	Kind   types.Kind
	Text   string
	Author string
	Column int // 0-based byte offset where the match begins (after indentation)
}

// Extract matches a single line of text against the marker pattern.
// It returns the match and true, or the zero Match and false when the
// line carries no annotation.
func Extract(line string) (Match, bool) {
	groups := markerPattern.FindStringSubmatch(line)
	if groups == nil {
		return Match{}, false
	}

	kind, err := types.ParseKind(groups[2])
	if err != nil {
		// Unreachable: the pattern only admits the five keywords.
		return Match{}, false
	}

	return Match{
		Kind:   kind,
		Text:   trimTrailer(groups[4]),
		Author: strings.TrimSpace(groups[3]),
		Column: len(groups[1]),
	}, true
}

// ExtractLine runs Extract and, on success, builds a full Annotation for
// the given file and 0-based line number.
func ExtractLine(file string, lineNo int, line string) (types.Annotation, bool) {
	m, ok := Extract(line)
	if !ok {
		return types.Annotation{}, false
	}
	return types.Annotation{
		Kind:   m.Kind,
		Text:   m.Text,
		Author: m.Author,
		File:   file,
		Line:   lineNo,
		Column: m.Column,
	}, true
}

// trimTrailer strips a trailing block-comment closer so that
// "/* TODO: x */" and "<!-- NOTE: y -->" yield clean text.
func trimTrailer(text string) string {
	text = strings.TrimSpace(text)
	for _, closer := range []string{"*/", "-->"} {
		if strings.HasSuffix(text, closer) {
			text = strings.TrimSpace(strings.TrimSuffix(text, closer))
		}
	}
	return text
}
