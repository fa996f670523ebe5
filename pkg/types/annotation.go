package types

import "strings"

// Kind represents the category of an inline annotation marker
type Kind string

const (
	KindTodo  Kind = "TODO"
	KindFixme Kind = "FIXME"
	KindNote  Kind = "NOTE"
	KindHack  Kind = "HACK"
	KindBug   Kind = "BUG"
)

// Kinds lists every annotation kind in display order
var Kinds = []Kind{KindTodo, KindFixme, KindNote, KindHack, KindBug}

// ParseKind normalizes a marker keyword to its Kind.
// Matching is case-insensitive; unknown keywords return ErrUnknownKind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(s)) {
	case KindTodo:
		return KindTodo, nil
	case KindFixme:
		return KindFixme, nil
	case KindNote:
		return KindNote, nil
	case KindHack:
		return KindHack, nil
	case KindBug:
		return KindBug, nil
	default:
		return "", ErrUnknownKind
	}
}

// Validate checks if the annotation kind is valid
func (k Kind) Validate() error {
	switch k {
	case KindTodo, KindFixme, KindNote, KindHack, KindBug:
		return nil
	default:
		return ErrUnknownKind
	}
}

// Annotation represents a structured marker extracted from one source line.
// Annotations are immutable; identity is structural (File, Line, Column,
// Kind), there is no stored id.
type Annotation struct {
	Kind   Kind
	Text   string // marker text with keyword, author and colon stripped
	Author string // optional "(author)" group, empty when absent
	File   string // path relative to the scan root for workspace results
	Line   int    // 0-based
	Column int    // 0-based byte offset of the match start
}

// Validate performs comprehensive validation of the annotation
func (a *Annotation) Validate() error {
	if err := a.Kind.Validate(); err != nil {
		return err
	}
	if a.File == "" {
		return ErrMissingFile
	}
	if a.Line < 0 || a.Column < 0 {
		return ErrInvalidPosition
	}
	return nil
}

// Equal reports whether two annotations are structurally identical
func (a Annotation) Equal(b Annotation) bool {
	return a == b
}
