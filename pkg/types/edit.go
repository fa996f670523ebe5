package types

// Edit describes one contiguous change to a document as reported by the
// editor collaborator. StartLine is the first affected line and EndLine
// the last affected line of the post-edit text (0-based, inclusive);
// InsertedLines is the number of lines the inserted text spans. The
// patcher pads its rescan window by at least 5 lines past EndLine, so
// annotations shifted by multi-line insertions and deletions land back
// inside the rescanned range.
type Edit struct {
	StartLine     int
	EndLine       int
	InsertedLines int
}

// Validate checks if the edit describes a usable range
func (e *Edit) Validate() error {
	if e.StartLine < 0 || e.EndLine < 0 || e.InsertedLines < 0 {
		return ErrInvalidPosition
	}
	if e.StartLine > e.EndLine {
		return ErrInvalidEdit
	}
	return nil
}
