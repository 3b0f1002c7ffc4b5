package macro

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRunning       = errors.New("macro engine is already running")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrEmptyConfiguration   = errors.New("no macros configured")
	ErrInvalidMacro         = errors.New("invalid macro")
	ErrDuplicateKey         = errors.New("duplicate key")
	ErrDuplicateHotkey      = errors.New("duplicate hotkey")
	ErrInvalidIndex         = errors.New("invalid macro index")
	ErrUnresolvedKeySymbol  = errors.New("unresolved key symbol")
	ErrSynthesisFailure     = errors.New("input synthesis failed")
)

// ValidationError reports why a macro set was rejected. It matches both
// ErrInvalidConfiguration and its specific Kind under errors.Is.
type ValidationError struct {
	Kind   error
	Index  int
	Symbol string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Kind == ErrEmptyConfiguration:
		return e.Kind.Error()
	case e.Symbol != "":
		return fmt.Sprintf("macro #%d: %s: %s", e.Index, e.Kind, e.Symbol)
	case e.Reason != "":
		return fmt.Sprintf("macro #%d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("macro #%d: %s", e.Index, e.Kind)
	}
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidConfiguration, e.Kind}
}
