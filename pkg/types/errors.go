package types

import "errors"

// Domain errors for type validation
var (
	ErrUnknownKind     = errors.New("unknown annotation kind")
	ErrInvalidScope    = errors.New("invalid scope")
	ErrMissingFile     = errors.New("file path is required")
	ErrInvalidPosition = errors.New("line and column must be non-negative")
	ErrInvalidEdit     = errors.New("edit start line must be <= end line")
)
