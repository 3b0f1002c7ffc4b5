package macro

import (
	"fmt"
	"strings"
	"sync/atomic"
)

type ActionKind uint8

const (
	ActionKeyboard ActionKind = iota + 1
	ActionMouse
)

func (k ActionKind) String() string {
	switch k {
	case ActionKeyboard:
		return "keyboard"
	case ActionMouse:
		return "mouse"
	default:
		return "unknown"
	}
}

// Action is what a macro emits on every firing: one key click or one mouse
// button click. Key is only meaningful for ActionKeyboard and Button only for
// ActionMouse.
type Action struct {
	Kind   ActionKind
	Key    string
	Button MouseButton
}

func KeyboardAction(symbol string) Action {
	return Action{Kind: ActionKeyboard, Key: symbol}
}

func MouseAction(button MouseButton) Action {
	return Action{Kind: ActionMouse, Button: button}
}

func (a Action) Describe() string {
	switch a.Kind {
	case ActionKeyboard:
		return fmt.Sprintf("key %s", a.Key)
	case ActionMouse:
		return fmt.Sprintf("mouse %s", a.Button)
	default:
		return "unknown action"
	}
}

// Definition is the static configuration of a single macro.
type Definition struct {
	Action             Action
	IntervalBaseMs     uint64
	IntervalVarianceMs uint64
	ToggleHotkey       string
	EnabledByDefault   bool
}

// Status is a point-in-time view of one running macro.
type Status struct {
	Index        int
	Action       Action
	ToggleHotkey string
	Enabled      bool
	Fired        uint64
	Failures     uint64
	Fault        string
}

// Synthesizer emits discrete input actions on behalf of the engine.
type Synthesizer interface {
	ClickKey(key Key) error
	ClickButton(button MouseButton) error
}

// KeyPoller reports the keys currently held down.
type KeyPoller interface {
	PressedKeys() KeySet
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ToggleState is the runtime enabled flag of one macro.
type ToggleState struct {
	enabled atomic.Bool
}

func NewToggleState(enabled bool) *ToggleState {
	s := &ToggleState{}
	s.enabled.Store(enabled)
	return s
}

func (s *ToggleState) Enabled() bool {
	return s.enabled.Load()
}

func (s *ToggleState) Set(enabled bool) {
	s.enabled.Store(enabled)
}

// Flip inverts the flag and returns the new value. Concurrent flips are
// serialized by the compare-and-swap, so none is lost.
func (s *ToggleState) Flip() bool {
	for {
		current := s.enabled.Load()
		if s.enabled.CompareAndSwap(current, !current) {
			return !current
		}
	}
}

// symbolIdentity folds a symbol for duplicate detection.
func symbolIdentity(symbol string) string {
	if key, err := ParseKey(symbol); err == nil {
		return "key:" + key.String()
	}
	return "raw:" + strings.ToLower(strings.TrimSpace(symbol))
}
