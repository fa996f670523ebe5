package types

// Scope selects which part of the index queries and scans target
type Scope string

const (
	// ScopeCurrent targets only the active document
	ScopeCurrent Scope = "current"
	// ScopeAll targets every known file in the workspace
	ScopeAll Scope = "all"
)

// Validate checks if the scope is valid
func (s Scope) Validate() error {
	switch s {
	case ScopeCurrent, ScopeAll:
		return nil
	default:
		return ErrInvalidScope
	}
}

// ParseScope converts a string to a Scope, defaulting to ScopeCurrent
// for the empty string.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeCurrent, nil
	case ScopeCurrent:
		return ScopeCurrent, nil
	case ScopeAll:
		return ScopeAll, nil
	default:
		return "", ErrInvalidScope
	}
}
