package wininput

import (
	"testing"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

func TestEverySupportedKeyHasVK(t *testing.T) {
	for _, key := range macro.SupportedKeys() {
		if _, ok := KeyToVK(key); !ok {
			t.Fatalf("no virtual-key code for %s", key.KernelName())
		}
	}
}

func TestKeyToVKMappings(t *testing.T) {
	tests := []struct {
		symbol string
		want   uint32
	}{
		{symbol: "F8", want: vkF8},
		{symbol: "e", want: vkE},
		{symbol: "1", want: vk1},
		{symbol: "enter", want: vkRETURN},
		{symbol: "KPEnter", want: vkRETURN},
	}
	for _, tc := range tests {
		key, err := macro.ParseKey(tc.symbol)
		if err != nil {
			t.Fatalf("ParseKey(%q) error = %v", tc.symbol, err)
		}
		if vk, ok := KeyToVK(key); !ok || vk != tc.want {
			t.Fatalf("KeyToVK(%s)=%d,%v, want %d,true", tc.symbol, vk, ok, tc.want)
		}
	}
}

func TestExtendedKeys(t *testing.T) {
	kpEnter, _ := macro.ParseKey("KPEnter")
	enter, _ := macro.ParseKey("Enter")
	if !isExtendedKey(kpEnter) || isExtendedKey(enter) {
		t.Fatalf("only keypad enter should carry the extended flag")
	}
}
