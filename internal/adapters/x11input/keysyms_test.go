package x11input

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

func TestKeysymName(t *testing.T) {
	tests := map[string]string{
		"e":      "e",
		"1":      "1",
		"F9":     "F9",
		"F24":    "F24",
		"Space":  "space",
		"Esc":    "Escape",
		"KPPlus": "KP_Add",
		"KP7":    "KP_7",
		"Dot":    "period",
	}
	for symbol, want := range tests {
		key, err := macro.ParseKey(symbol)
		if err != nil {
			t.Fatalf("ParseKey(%q) error = %v", symbol, err)
		}
		got, ok := keysymName(key)
		if !ok || got != want {
			t.Fatalf("keysymName(%s) = %q, %v; want %q", symbol, got, ok, want)
		}
	}
}

func TestEverySupportedKeyHasKeysym(t *testing.T) {
	for _, key := range macro.SupportedKeys() {
		if _, ok := keysymName(key); !ok {
			t.Fatalf("no keysym for %s", key.KernelName())
		}
	}
}

func TestPressedFromKeymap(t *testing.T) {
	bitmap := make([]byte, 32)
	bitmap[75/8] |= 1 << (75 % 8)
	bitmap[26/8] |= 1 << (26 % 8)
	bitmap[9/8] |= 1 << (9 % 8)

	f9, _ := macro.ParseKey("F9")
	e, _ := macro.ParseKey("e")
	lookup := map[xproto.Keycode]macro.Key{75: f9, 26: e}

	pressed := pressedFromKeymap(bitmap, lookup)
	if len(pressed) != 2 || !pressed.Has(f9) || !pressed.Has(e) {
		t.Fatalf("unexpected pressed set %v", pressed)
	}
}

func TestXButton(t *testing.T) {
	if detail, ok := xButton(macro.ButtonRight); !ok || detail != xproto.ButtonIndex3 {
		t.Fatalf("xButton(right) = %d, %v", detail, ok)
	}
	if _, ok := xButton(0); ok {
		t.Fatalf("expected zero button to be unsupported")
	}
}
