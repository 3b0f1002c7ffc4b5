package x11input

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

var xKeysymOverrides = map[string]string{
	"ESC":        "Escape",
	"ENTER":      "Return",
	"TAB":        "Tab",
	"SPACE":      "space",
	"BACKSPACE":  "BackSpace",
	"LEFTSHIFT":  "Shift_L",
	"RIGHTSHIFT": "Shift_R",
	"LEFTCTRL":   "Control_L",
	"RIGHTCTRL":  "Control_R",
	"LEFTALT":    "Alt_L",
	"RIGHTALT":   "Alt_R",
	"LEFTMETA":   "Super_L",
	"RIGHTMETA":  "Super_R",
	"CAPSLOCK":   "Caps_Lock",
	"NUMLOCK":    "Num_Lock",
	"SCROLLLOCK": "Scroll_Lock",
	"SYSRQ":      "Print",
	"PAGEUP":     "Page_Up",
	"PAGEDOWN":   "Page_Down",
	"INSERT":     "Insert",
	"DELETE":     "Delete",
	"HOME":       "Home",
	"END":        "End",
	"UP":         "Up",
	"DOWN":       "Down",
	"LEFT":       "Left",
	"RIGHT":      "Right",
	"MENU":       "Menu",
	"PAUSE":      "Pause",
	"MUTE":       "XF86AudioMute",
	"VOLUMEDOWN": "XF86AudioLowerVolume",
	"VOLUMEUP":   "XF86AudioRaiseVolume",
	"MINUS":      "minus",
	"EQUAL":      "equal",
	"LEFTBRACE":  "bracketleft",
	"RIGHTBRACE": "bracketright",
	"SEMICOLON":  "semicolon",
	"APOSTROPHE": "apostrophe",
	"GRAVE":      "grave",
	"BACKSLASH":  "backslash",
	"COMMA":      "comma",
	"DOT":        "period",
	"SLASH":      "slash",
	"KPPLUS":     "KP_Add",
	"KPMINUS":    "KP_Subtract",
	"KPASTERISK": "KP_Multiply",
	"KPSLASH":    "KP_Divide",
	"KPDOT":      "KP_Decimal",
	"KPENTER":    "KP_Enter",
}

// keysymName maps a key to the X keysym string keybind understands.
func keysymName(key macro.Key) (string, bool) {
	name := key.KernelName()
	if !strings.HasPrefix(name, "KEY_") {
		return "", false
	}
	token := strings.TrimPrefix(name, "KEY_")

	if sym, ok := xKeysymOverrides[token]; ok {
		return sym, true
	}
	if len(token) == 1 && token[0] >= 'A' && token[0] <= 'Z' {
		return strings.ToLower(token), true
	}
	if len(token) == 1 && token[0] >= '0' && token[0] <= '9' {
		return token, true
	}
	if strings.HasPrefix(token, "F") && isDigits(token[1:]) {
		return token, true
	}
	if strings.HasPrefix(token, "KP") && len(token) == 3 && isDigits(token[2:]) {
		return "KP_" + token[2:], true
	}
	return "", false
}

func xButton(button macro.MouseButton) (byte, bool) {
	switch button {
	case macro.ButtonLeft:
		return xproto.ButtonIndex1, true
	case macro.ButtonMiddle:
		return xproto.ButtonIndex2, true
	case macro.ButtonRight:
		return xproto.ButtonIndex3, true
	default:
		return 0, false
	}
}

// pressedFromKeymap decodes a QueryKeymap bitmap, in which keycode n is bit
// n%8 of byte n/8.
func pressedFromKeymap(bitmap []byte, lookup map[xproto.Keycode]macro.Key) macro.KeySet {
	pressed := make(macro.KeySet)
	for idx, b := range bitmap {
		if b == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) == 0 {
				continue
			}
			if key, ok := lookup[xproto.Keycode(idx*8+bit)]; ok {
				pressed[key] = struct{}{}
			}
		}
	}
	return pressed
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
