package macro

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a macro set: at least one
// macro, a usable action per macro, non-empty toggle hotkeys, and pairwise
// distinct keyboard keys and hotkeys. Symbol resolution is left to the loops.
func Validate(defs []Definition) error {
	if len(defs) == 0 {
		return &ValidationError{Kind: ErrEmptyConfiguration}
	}

	for idx, def := range defs {
		if err := validateDefinition(idx, def); err != nil {
			return err
		}
	}

	keys := make(map[string]struct{}, len(defs))
	for idx, def := range defs {
		if def.Action.Kind != ActionKeyboard {
			continue
		}
		id := symbolIdentity(def.Action.Key)
		if _, dup := keys[id]; dup {
			return &ValidationError{Kind: ErrDuplicateKey, Index: idx, Symbol: def.Action.Key}
		}
		keys[id] = struct{}{}
	}

	hotkeys := make(map[string]struct{}, len(defs))
	for idx, def := range defs {
		id := symbolIdentity(def.ToggleHotkey)
		if _, dup := hotkeys[id]; dup {
			return &ValidationError{Kind: ErrDuplicateHotkey, Index: idx, Symbol: def.ToggleHotkey}
		}
		hotkeys[id] = struct{}{}
	}
	return nil
}

func validateDefinition(idx int, def Definition) error {
	switch def.Action.Kind {
	case ActionKeyboard:
		if strings.TrimSpace(def.Action.Key) == "" && def.Action.Key != " " {
			return &ValidationError{Kind: ErrInvalidMacro, Index: idx, Reason: "has empty key"}
		}
	case ActionMouse:
		if !def.Action.Button.Valid() {
			return &ValidationError{Kind: ErrInvalidMacro, Index: idx, Reason: "has no mouse button specified"}
		}
	default:
		return &ValidationError{Kind: ErrInvalidMacro, Index: idx, Reason: "has unknown action type"}
	}
	if strings.TrimSpace(def.ToggleHotkey) == "" {
		return &ValidationError{Kind: ErrInvalidMacro, Index: idx, Reason: "has empty toggle hotkey"}
	}
	if def.IntervalBaseMs > maxIntervalMs {
		return &ValidationError{Kind: ErrInvalidMacro, Index: idx, Reason: fmt.Sprintf("has interval above %dms", maxIntervalMs)}
	}
	if def.IntervalVarianceMs > maxIntervalMs {
		return &ValidationError{Kind: ErrInvalidMacro, Index: idx, Reason: fmt.Sprintf("has random variance above %dms", maxIntervalMs)}
	}
	return nil
}

// CheckSymbols resolves every key and hotkey symbol up front. The engine does
// not call it; the loops resolve their own symbols when they start. It exists
// so configuration tooling can report unknown keys before a run.
func CheckSymbols(defs []Definition) error {
	var errs []error
	for idx, def := range defs {
		if def.Action.Kind == ActionKeyboard {
			if _, err := ParseKey(def.Action.Key); err != nil {
				errs = append(errs, fmt.Errorf("macro #%d key: %w", idx, err))
			}
		}
		if _, err := ParseKey(def.ToggleHotkey); err != nil {
			errs = append(errs, fmt.Errorf("macro #%d toggle hotkey: %w", idx, err))
		}
	}
	return errors.Join(errs...)
}

// CheckIntervals reports macros that would fire faster than MinInterval.
// Jitter only applies the floor when a variance is set, so a short interval
// with zero variance is used as is.
func CheckIntervals(defs []Definition) error {
	var errs []error
	floor := uint64(MinInterval.Milliseconds())
	for idx, def := range defs {
		if def.IntervalVarianceMs == 0 && def.IntervalBaseMs < floor {
			errs = append(errs, fmt.Errorf("macro #%d: interval %dms with no variance is below the %v floor", idx, def.IntervalBaseMs, MinInterval))
		}
	}
	return errors.Join(errs...)
}
