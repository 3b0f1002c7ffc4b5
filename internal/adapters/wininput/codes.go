package wininput

import (
	"fmt"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

const (
	vkLBUTTON  uint32 = 0x01
	vkRBUTTON  uint32 = 0x02
	vkMBUTTON  uint32 = 0x04
	vkXBUTTON1 uint32 = 0x05
	vkXBUTTON2 uint32 = 0x06

	vkBACK       uint32 = 0x08
	vkTAB        uint32 = 0x09
	vkRETURN     uint32 = 0x0D
	vkSHIFT      uint32 = 0x10
	vkCONTROL    uint32 = 0x11
	vkMENU       uint32 = 0x12
	vkPAUSE      uint32 = 0x13
	vkCAPITAL    uint32 = 0x14
	vkESCAPE     uint32 = 0x1B
	vkSPACE      uint32 = 0x20
	vkPRIOR      uint32 = 0x21
	vkNEXT       uint32 = 0x22
	vkEND        uint32 = 0x23
	vkHOME       uint32 = 0x24
	vkLEFT       uint32 = 0x25
	vkUP         uint32 = 0x26
	vkRIGHT      uint32 = 0x27
	vkDOWN       uint32 = 0x28
	vkSNAPSHOT   uint32 = 0x2C
	vkINSERT     uint32 = 0x2D
	vkDELETE     uint32 = 0x2E
	vk0          uint32 = 0x30
	vk1          uint32 = 0x31
	vk2          uint32 = 0x32
	vk3          uint32 = 0x33
	vk4          uint32 = 0x34
	vk5          uint32 = 0x35
	vk6          uint32 = 0x36
	vk7          uint32 = 0x37
	vk8          uint32 = 0x38
	vk9          uint32 = 0x39
	vkA          uint32 = 0x41
	vkB          uint32 = 0x42
	vkC          uint32 = 0x43
	vkD          uint32 = 0x44
	vkE          uint32 = 0x45
	vkF          uint32 = 0x46
	vkG          uint32 = 0x47
	vkH          uint32 = 0x48
	vkI          uint32 = 0x49
	vkJ          uint32 = 0x4A
	vkK          uint32 = 0x4B
	vkL          uint32 = 0x4C
	vkM          uint32 = 0x4D
	vkN          uint32 = 0x4E
	vkO          uint32 = 0x4F
	vkP          uint32 = 0x50
	vkQ          uint32 = 0x51
	vkR          uint32 = 0x52
	vkS          uint32 = 0x53
	vkT          uint32 = 0x54
	vkU          uint32 = 0x55
	vkV          uint32 = 0x56
	vkW          uint32 = 0x57
	vkX          uint32 = 0x58
	vkY          uint32 = 0x59
	vkZ          uint32 = 0x5A
	vkLWIN       uint32 = 0x5B
	vkRWIN       uint32 = 0x5C
	vkAPPS       uint32 = 0x5D
	vkNUMPAD0    uint32 = 0x60
	vkNUMPAD1    uint32 = 0x61
	vkNUMPAD2    uint32 = 0x62
	vkNUMPAD3    uint32 = 0x63
	vkNUMPAD4    uint32 = 0x64
	vkNUMPAD5    uint32 = 0x65
	vkNUMPAD6    uint32 = 0x66
	vkNUMPAD7    uint32 = 0x67
	vkNUMPAD8    uint32 = 0x68
	vkNUMPAD9    uint32 = 0x69
	vkMULTIPLY   uint32 = 0x6A
	vkADD        uint32 = 0x6B
	vkSUBTRACT   uint32 = 0x6D
	vkDECIMAL    uint32 = 0x6E
	vkDIVIDE     uint32 = 0x6F
	vkF1         uint32 = 0x70
	vkF2         uint32 = 0x71
	vkF3         uint32 = 0x72
	vkF4         uint32 = 0x73
	vkF5         uint32 = 0x74
	vkF6         uint32 = 0x75
	vkF7         uint32 = 0x76
	vkF8         uint32 = 0x77
	vkF9         uint32 = 0x78
	vkF10        uint32 = 0x79
	vkF11        uint32 = 0x7A
	vkF12        uint32 = 0x7B
	vkF13        uint32 = 0x7C
	vkF14        uint32 = 0x7D
	vkF15        uint32 = 0x7E
	vkF16        uint32 = 0x7F
	vkF17        uint32 = 0x80
	vkF18        uint32 = 0x81
	vkF19        uint32 = 0x82
	vkF20        uint32 = 0x83
	vkF21        uint32 = 0x84
	vkF22        uint32 = 0x85
	vkF23        uint32 = 0x86
	vkF24        uint32 = 0x87
	vkNUMLOCK    uint32 = 0x90
	vkSCROLL     uint32 = 0x91
	vkLSHIFT     uint32 = 0xA0
	vkRSHIFT     uint32 = 0xA1
	vkLCONTROL   uint32 = 0xA2
	vkRCONTROL   uint32 = 0xA3
	vkLMENU      uint32 = 0xA4
	vkRMENU      uint32 = 0xA5
	vkVOLUMEMUTE uint32 = 0xAD
	vkVOLUMEDOWN uint32 = 0xAE
	vkVOLUMEUP   uint32 = 0xAF
	vkOEM1       uint32 = 0xBA
	vkOEMPLUS    uint32 = 0xBB
	vkOEMCOMMA   uint32 = 0xBC
	vkOEMMINUS   uint32 = 0xBD
	vkOEMPERIOD  uint32 = 0xBE
	vkOEM2       uint32 = 0xBF
	vkOEM3       uint32 = 0xC0
	vkOEM4       uint32 = 0xDB
	vkOEM5       uint32 = 0xDC
	vkOEM6       uint32 = 0xDD
	vkOEM7       uint32 = 0xDE
)

// keyVKNames maps key names onto Windows virtual-key codes.
var keyVKNames = map[string]uint32{
	"Esc":        vkESCAPE,
	"1":          vk1,
	"2":          vk2,
	"3":          vk3,
	"4":          vk4,
	"5":          vk5,
	"6":          vk6,
	"7":          vk7,
	"8":          vk8,
	"9":          vk9,
	"0":          vk0,
	"Minus":      vkOEMMINUS,
	"Equal":      vkOEMPLUS,
	"Backspace":  vkBACK,
	"Tab":        vkTAB,
	"q":          vkQ,
	"w":          vkW,
	"e":          vkE,
	"r":          vkR,
	"t":          vkT,
	"y":          vkY,
	"u":          vkU,
	"i":          vkI,
	"o":          vkO,
	"p":          vkP,
	"LeftBrace":  vkOEM4,
	"RightBrace": vkOEM6,
	"Enter":      vkRETURN,
	"LeftCtrl":   vkLCONTROL,
	"a":          vkA,
	"s":          vkS,
	"d":          vkD,
	"f":          vkF,
	"g":          vkG,
	"h":          vkH,
	"j":          vkJ,
	"k":          vkK,
	"l":          vkL,
	"Semicolon":  vkOEM1,
	"Apostrophe": vkOEM7,
	"Grave":      vkOEM3,
	"LeftShift":  vkLSHIFT,
	"Backslash":  vkOEM5,
	"z":          vkZ,
	"x":          vkX,
	"c":          vkC,
	"v":          vkV,
	"b":          vkB,
	"n":          vkN,
	"m":          vkM,
	"Comma":      vkOEMCOMMA,
	"Dot":        vkOEMPERIOD,
	"Slash":      vkOEM2,
	"RightShift": vkRSHIFT,
	"KPAsterisk": vkMULTIPLY,
	"LeftAlt":    vkLMENU,
	"Space":      vkSPACE,
	"CapsLock":   vkCAPITAL,
	"F1":         vkF1,
	"F2":         vkF2,
	"F3":         vkF3,
	"F4":         vkF4,
	"F5":         vkF5,
	"F6":         vkF6,
	"F7":         vkF7,
	"F8":         vkF8,
	"F9":         vkF9,
	"F10":        vkF10,
	"NumLock":    vkNUMLOCK,
	"ScrollLock": vkSCROLL,
	"KP7":        vkNUMPAD7,
	"KP8":        vkNUMPAD8,
	"KP9":        vkNUMPAD9,
	"KPMinus":    vkSUBTRACT,
	"KP4":        vkNUMPAD4,
	"KP5":        vkNUMPAD5,
	"KP6":        vkNUMPAD6,
	"KPPlus":     vkADD,
	"KP1":        vkNUMPAD1,
	"KP2":        vkNUMPAD2,
	"KP3":        vkNUMPAD3,
	"KP0":        vkNUMPAD0,
	"KPDot":      vkDECIMAL,
	"F11":        vkF11,
	"F12":        vkF12,
	"KPEnter":    vkRETURN,
	"RightCtrl":  vkRCONTROL,
	"KPSlash":    vkDIVIDE,
	"SysRq":      vkSNAPSHOT,
	"RightAlt":   vkRMENU,
	"Home":       vkHOME,
	"Up":         vkUP,
	"PageUp":     vkPRIOR,
	"Left":       vkLEFT,
	"Right":      vkRIGHT,
	"End":        vkEND,
	"Down":       vkDOWN,
	"PageDown":   vkNEXT,
	"Insert":     vkINSERT,
	"Delete":     vkDELETE,
	"Mute":       vkVOLUMEMUTE,
	"VolumeDown": vkVOLUMEDOWN,
	"VolumeUp":   vkVOLUMEUP,
	"Pause":      vkPAUSE,
	"LeftMeta":   vkLWIN,
	"RightMeta":  vkRWIN,
	"Menu":       vkAPPS,
	"F13":        vkF13,
	"F14":        vkF14,
	"F15":        vkF15,
	"F16":        vkF16,
	"F17":        vkF17,
	"F18":        vkF18,
	"F19":        vkF19,
	"F20":        vkF20,
	"F21":        vkF21,
	"F22":        vkF22,
	"F23":        vkF23,
	"F24":        vkF24,
}

// extendedKeys must be sent with KEYEVENTF_EXTENDEDKEY or Windows reports
// the numeric keypad twin instead.
var extendedKeys = map[string]struct{}{
	"RightCtrl": {},
	"RightAlt":  {},
	"KPEnter":   {},
	"KPSlash":   {},
	"SysRq":     {},
	"Home":      {},
	"Up":        {},
	"PageUp":    {},
	"Left":      {},
	"Right":     {},
	"End":       {},
	"Down":      {},
	"PageDown":  {},
	"Insert":    {},
	"Delete":    {},
	"LeftMeta":  {},
	"RightMeta": {},
	"Menu":      {},
}

var (
	keyToVK  map[macro.Key]uint32
	extended map[macro.Key]bool
)

func init() {
	keyToVK = make(map[macro.Key]uint32, len(keyVKNames))
	extended = make(map[macro.Key]bool, len(extendedKeys))
	for name, vk := range keyVKNames {
		key, err := macro.ParseKey(name)
		if err != nil {
			panic(fmt.Sprintf("wininput: bad key name %q: %v", name, err))
		}
		keyToVK[key] = vk
		if _, ok := extendedKeys[name]; ok {
			extended[key] = true
		}
	}
}

// KeyToVK returns the virtual-key code for key.
func KeyToVK(key macro.Key) (uint32, bool) {
	vk, ok := keyToVK[key]
	return vk, ok
}

func isExtendedKey(key macro.Key) bool {
	return extended[key]
}
