package linuxinput

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

func TestKeyTableMatchesKernelCodes(t *testing.T) {
	for _, key := range macro.SupportedKeys() {
		code, ok := evdev.KEYFromString[key.KernelName()]
		if !ok {
			t.Fatalf("evdev has no code named %s", key.KernelName())
		}
		if code != keyCode(key) {
			t.Fatalf("%s: table code %d, evdev code %d", key.KernelName(), keyCode(key), code)
		}
	}
}

func TestButtonCodes(t *testing.T) {
	for _, button := range []macro.MouseButton{macro.ButtonLeft, macro.ButtonRight, macro.ButtonMiddle} {
		code, ok := buttonCode(button)
		if !ok || uint16(code) != button.Code() {
			t.Fatalf("buttonCode(%s) = %d, %v; want %d", button, code, ok, button.Code())
		}
	}
}
