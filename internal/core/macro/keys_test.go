package macro

import (
	"errors"
	"testing"
)

func TestParseKeyAcceptsFriendlyAndKernelSpellings(t *testing.T) {
	tests := []struct {
		symbol string
		want   Key
	}{
		{symbol: "1", want: 2},
		{symbol: "e", want: 18},
		{symbol: "E", want: 18},
		{symbol: "KEY_E", want: 18},
		{symbol: "F9", want: 67},
		{symbol: "f10", want: 68},
		{symbol: "KEY_F11", want: 87},
		{symbol: "F12", want: 88},
		{symbol: "escape", want: 1},
		{symbol: "page_up", want: 104},
		{symbol: " ", want: 57},
	}

	for _, tc := range tests {
		got, err := ParseKey(tc.symbol)
		if err != nil {
			t.Fatalf("ParseKey(%q) error = %v", tc.symbol, err)
		}
		if got != tc.want {
			t.Fatalf("ParseKey(%q) = %d, want %d", tc.symbol, got, tc.want)
		}
	}
}

func TestParseKeyRejectsUnknownSymbols(t *testing.T) {
	for _, symbol := range []string{"", "  ", "F99", "not-a-key"} {
		if _, err := ParseKey(symbol); !errors.Is(err, ErrUnresolvedKeySymbol) {
			t.Fatalf("ParseKey(%q) error = %v, want ErrUnresolvedKeySymbol", symbol, err)
		}
	}
}

func TestKeyNames(t *testing.T) {
	key, err := ParseKey("f9")
	if err != nil {
		t.Fatalf("ParseKey() error = %v", err)
	}
	if got := key.String(); got != "F9" {
		t.Fatalf("String() = %q, want F9", got)
	}
	if got := key.KernelName(); got != "KEY_F9" {
		t.Fatalf("KernelName() = %q, want KEY_F9", got)
	}
	if Key(0xffff).Known() {
		t.Fatalf("expected unlisted code to be unknown")
	}
	if got := Key(0xffff).String(); got != "65535" {
		t.Fatalf("String() of unknown key = %q", got)
	}
}

func TestSupportedKeysIsSortedAndComplete(t *testing.T) {
	keys := SupportedKeys()
	if len(keys) != len(keySymbols) {
		t.Fatalf("SupportedKeys() returned %d keys, want %d", len(keys), len(keySymbols))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("SupportedKeys() not strictly ascending at %d: %d >= %d", i, keys[i-1], keys[i])
		}
	}
}

func TestParseMouseButton(t *testing.T) {
	tests := map[string]MouseButton{
		"left":       ButtonLeft,
		"Right":      ButtonRight,
		"BTN_MIDDLE": ButtonMiddle,
	}
	for value, want := range tests {
		got, err := ParseMouseButton(value)
		if err != nil {
			t.Fatalf("ParseMouseButton(%q) error = %v", value, err)
		}
		if got != want {
			t.Fatalf("ParseMouseButton(%q) = %v, want %v", value, got, want)
		}
	}
	if _, err := ParseMouseButton("side"); err == nil {
		t.Fatalf("expected error for unsupported button")
	}
	if ButtonLeft.Code() != 0x110 || ButtonMiddle.Code() != 0x112 {
		t.Fatalf("unexpected button codes")
	}
}

func TestToggleStateFlip(t *testing.T) {
	state := NewToggleState(false)
	if !state.Flip() || !state.Enabled() {
		t.Fatalf("first flip should enable")
	}
	if state.Flip() || state.Enabled() {
		t.Fatalf("second flip should disable")
	}
	state.Set(true)
	if !state.Enabled() {
		t.Fatalf("Set(true) did not stick")
	}
}
