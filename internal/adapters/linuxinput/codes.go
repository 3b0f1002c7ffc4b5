package linuxinput

import (
	"strconv"

	evdev "github.com/holoplot/go-evdev"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

// keyCode maps a key onto its evdev code. macro.Key already uses the kernel
// numbering, so this is a conversion rather than a lookup.
func keyCode(key macro.Key) evdev.EvCode {
	return evdev.EvCode(key)
}

func buttonCode(button macro.MouseButton) (evdev.EvCode, bool) {
	switch button {
	case macro.ButtonLeft:
		return evdev.BTN_LEFT, true
	case macro.ButtonRight:
		return evdev.BTN_RIGHT, true
	case macro.ButtonMiddle:
		return evdev.BTN_MIDDLE, true
	default:
		return 0, false
	}
}

func FormatCodeName(code uint16) string {
	name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}
