package macro

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Key is a logical key code. Values follow the Linux input-event numbering so
// every backend can translate from a single table.
type Key uint16

type keySymbol struct {
	name    string
	code    Key
	aliases []string
}

var keySymbols = []keySymbol{
	{name: "Esc", code: 1, aliases: []string{"escape"}},
	{name: "1", code: 2},
	{name: "2", code: 3},
	{name: "3", code: 4},
	{name: "4", code: 5},
	{name: "5", code: 6},
	{name: "6", code: 7},
	{name: "7", code: 8},
	{name: "8", code: 9},
	{name: "9", code: 10},
	{name: "0", code: 11},
	{name: "Minus", code: 12, aliases: []string{"-"}},
	{name: "Equal", code: 13, aliases: []string{"="}},
	{name: "Backspace", code: 14},
	{name: "Tab", code: 15},
	{name: "q", code: 16},
	{name: "w", code: 17},
	{name: "e", code: 18},
	{name: "r", code: 19},
	{name: "t", code: 20},
	{name: "y", code: 21},
	{name: "u", code: 22},
	{name: "i", code: 23},
	{name: "o", code: 24},
	{name: "p", code: 25},
	{name: "LeftBrace", code: 26, aliases: []string{"["}},
	{name: "RightBrace", code: 27, aliases: []string{"]"}},
	{name: "Enter", code: 28, aliases: []string{"return"}},
	{name: "LeftCtrl", code: 29, aliases: []string{"ctrl", "control"}},
	{name: "a", code: 30},
	{name: "s", code: 31},
	{name: "d", code: 32},
	{name: "f", code: 33},
	{name: "g", code: 34},
	{name: "h", code: 35},
	{name: "j", code: 36},
	{name: "k", code: 37},
	{name: "l", code: 38},
	{name: "Semicolon", code: 39, aliases: []string{";"}},
	{name: "Apostrophe", code: 40, aliases: []string{"'"}},
	{name: "Grave", code: 41, aliases: []string{"`"}},
	{name: "LeftShift", code: 42, aliases: []string{"shift"}},
	{name: "Backslash", code: 43, aliases: []string{"\\"}},
	{name: "z", code: 44},
	{name: "x", code: 45},
	{name: "c", code: 46},
	{name: "v", code: 47},
	{name: "b", code: 48},
	{name: "n", code: 49},
	{name: "m", code: 50},
	{name: "Comma", code: 51, aliases: []string{","}},
	{name: "Dot", code: 52, aliases: []string{".", "period"}},
	{name: "Slash", code: 53, aliases: []string{"/"}},
	{name: "RightShift", code: 54},
	{name: "KPAsterisk", code: 55},
	{name: "LeftAlt", code: 56, aliases: []string{"alt"}},
	{name: "Space", code: 57, aliases: []string{" "}},
	{name: "CapsLock", code: 58},
	{name: "F1", code: 59},
	{name: "F2", code: 60},
	{name: "F3", code: 61},
	{name: "F4", code: 62},
	{name: "F5", code: 63},
	{name: "F6", code: 64},
	{name: "F7", code: 65},
	{name: "F8", code: 66},
	{name: "F9", code: 67},
	{name: "F10", code: 68},
	{name: "NumLock", code: 69},
	{name: "ScrollLock", code: 70},
	{name: "KP7", code: 71},
	{name: "KP8", code: 72},
	{name: "KP9", code: 73},
	{name: "KPMinus", code: 74},
	{name: "KP4", code: 75},
	{name: "KP5", code: 76},
	{name: "KP6", code: 77},
	{name: "KPPlus", code: 78},
	{name: "KP1", code: 79},
	{name: "KP2", code: 80},
	{name: "KP3", code: 81},
	{name: "KP0", code: 82},
	{name: "KPDot", code: 83},
	{name: "F11", code: 87},
	{name: "F12", code: 88},
	{name: "KPEnter", code: 96},
	{name: "RightCtrl", code: 97},
	{name: "KPSlash", code: 98},
	{name: "SysRq", code: 99, aliases: []string{"printscreen"}},
	{name: "RightAlt", code: 100, aliases: []string{"altgr"}},
	{name: "Home", code: 102},
	{name: "Up", code: 103},
	{name: "PageUp", code: 104},
	{name: "Left", code: 105},
	{name: "Right", code: 106},
	{name: "End", code: 107},
	{name: "Down", code: 108},
	{name: "PageDown", code: 109},
	{name: "Insert", code: 110},
	{name: "Delete", code: 111},
	{name: "Mute", code: 113},
	{name: "VolumeDown", code: 114},
	{name: "VolumeUp", code: 115},
	{name: "Pause", code: 119},
	{name: "LeftMeta", code: 125, aliases: []string{"super", "win"}},
	{name: "RightMeta", code: 126},
	{name: "Menu", code: 139},
	{name: "F13", code: 183},
	{name: "F14", code: 184},
	{name: "F15", code: 185},
	{name: "F16", code: 186},
	{name: "F17", code: 187},
	{name: "F18", code: 188},
	{name: "F19", code: 189},
	{name: "F20", code: 190},
	{name: "F21", code: 191},
	{name: "F22", code: 192},
	{name: "F23", code: 193},
	{name: "F24", code: 194},
}

var (
	symbolToKey map[string]Key
	keyToName   map[Key]string
	allKeys     []Key
)

func init() {
	symbolToKey = make(map[string]Key, len(keySymbols)*2)
	keyToName = make(map[Key]string, len(keySymbols))
	allKeys = make([]Key, 0, len(keySymbols))
	for _, sym := range keySymbols {
		symbolToKey[normalizeSymbol(sym.name)] = sym.code
		for _, alias := range sym.aliases {
			symbolToKey[normalizeSymbol(alias)] = sym.code
		}
		keyToName[sym.code] = sym.name
		allKeys = append(allKeys, sym.code)
	}
	sort.Slice(allKeys, func(i, j int) bool { return allKeys[i] < allKeys[j] })
}

// normalizeSymbol folds case and strips the kernel-style KEY_ prefix, so
// "KEY_F9", "f9" and "F9" resolve to the same entry.
func normalizeSymbol(symbol string) string {
	if symbol == " " {
		return symbol
	}
	raw := strings.ToLower(strings.TrimSpace(symbol))
	raw = strings.TrimPrefix(raw, "key_")
	return strings.ReplaceAll(raw, "_", "")
}

// ParseKey resolves a key symbol against the supported symbol table.
func ParseKey(symbol string) (Key, error) {
	if strings.TrimSpace(symbol) == "" && symbol != " " {
		return 0, fmt.Errorf("empty key symbol: %w", ErrUnresolvedKeySymbol)
	}
	if key, ok := symbolToKey[normalizeSymbol(symbol)]; ok {
		return key, nil
	}
	return 0, fmt.Errorf("unknown key %q: %w", symbol, ErrUnresolvedKeySymbol)
}

func (k Key) String() string {
	if name, ok := keyToName[k]; ok {
		return name
	}
	return strconv.Itoa(int(k))
}

// KernelName returns the KEY_* spelling used by evdev tooling.
func (k Key) KernelName() string {
	name, ok := keyToName[k]
	if !ok {
		return strconv.Itoa(int(k))
	}
	return "KEY_" + strings.ToUpper(name)
}

// Known reports whether the key is part of the supported symbol table.
func (k Key) Known() bool {
	_, ok := keyToName[k]
	return ok
}

// SupportedKeys returns every key in the symbol table in code order.
func SupportedKeys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// KeySet is the set of keys currently held down.
type KeySet map[Key]struct{}

func NewKeySet(keys ...Key) KeySet {
	set := make(KeySet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

func (s KeySet) Has(key Key) bool {
	_, ok := s[key]
	return ok
}

// MouseButton identifies one of the supported mouse buttons.
type MouseButton uint8

const (
	ButtonLeft MouseButton = iota + 1
	ButtonRight
	ButtonMiddle
)

// Button codes in the same numbering space as Key.
const (
	ButtonLeftCode   uint16 = 0x110
	ButtonRightCode  uint16 = 0x111
	ButtonMiddleCode uint16 = 0x112
)

func ParseMouseButton(value string) (MouseButton, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "btn_left":
		return ButtonLeft, nil
	case "right", "btn_right":
		return ButtonRight, nil
	case "middle", "btn_middle":
		return ButtonMiddle, nil
	default:
		return 0, fmt.Errorf("unknown mouse button %q (expected left|right|middle)", value)
	}
}

func (b MouseButton) Valid() bool {
	return b >= ButtonLeft && b <= ButtonMiddle
}

// Code returns the button's input-event code.
func (b MouseButton) Code() uint16 {
	switch b {
	case ButtonLeft:
		return ButtonLeftCode
	case ButtonRight:
		return ButtonRightCode
	case ButtonMiddle:
		return ButtonMiddleCode
	default:
		return 0
	}
}

func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}
