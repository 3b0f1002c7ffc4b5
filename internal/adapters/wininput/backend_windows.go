//go:build windows

package wininput

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002

	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040

	mapvkVKToVSC = 0
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSendInput        = user32.NewProc("SendInput")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
	procMapVirtualKeyW   = user32.NewProc("MapVirtualKeyW")
)

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type mouseInputRecord struct {
	Type uint32
	Mi   mouseInput
}

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// keybdInputRecord is padded to the size of the INPUT union, which is sized
// by its mouse member.
type keybdInputRecord struct {
	Type uint32
	Ki   keybdInput
	_    [unsafe.Sizeof(mouseInput{}) - unsafe.Sizeof(keybdInput{})]byte
}

// Backend synthesizes input with SendInput and polls key state with
// GetAsyncKeyState.
type Backend struct {
	logger macro.Logger
	mu     sync.Mutex
}

func New(logger macro.Logger) (*Backend, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("load SendInput: %w", err)
	}
	if err := procGetAsyncKeyState.Find(); err != nil {
		return nil, fmt.Errorf("load GetAsyncKeyState: %w", err)
	}
	return &Backend{logger: logger}, nil
}

func (b *Backend) ClickKey(key macro.Key) error {
	vk, ok := KeyToVK(key)
	if !ok {
		return fmt.Errorf("no virtual-key code for %s", key)
	}
	scan, _, _ := procMapVirtualKeyW.Call(uintptr(vk), mapvkVKToVSC)

	var flags uint32
	if isExtendedKey(key) {
		flags |= keyeventfExtendedKey
	}
	inputs := []keybdInputRecord{
		{Type: inputKeyboard, Ki: keybdInput{WVk: uint16(vk), WScan: uint16(scan), DwFlags: flags}},
		{Type: inputKeyboard, Ki: keybdInput{WVk: uint16(vk), WScan: uint16(scan), DwFlags: flags | keyeventfKeyUp}},
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return sendInput(len(inputs), unsafe.Pointer(&inputs[0]), unsafe.Sizeof(inputs[0]))
}

func (b *Backend) ClickButton(button macro.MouseButton) error {
	var down, up uint32
	switch button {
	case macro.ButtonLeft:
		down, up = mouseeventfLeftDown, mouseeventfLeftUp
	case macro.ButtonRight:
		down, up = mouseeventfRightDown, mouseeventfRightUp
	case macro.ButtonMiddle:
		down, up = mouseeventfMiddleDown, mouseeventfMiddleUp
	default:
		return fmt.Errorf("unsupported mouse button %s", button)
	}
	inputs := []mouseInputRecord{
		{Type: inputMouse, Mi: mouseInput{DwFlags: down}},
		{Type: inputMouse, Mi: mouseInput{DwFlags: up}},
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return sendInput(len(inputs), unsafe.Pointer(&inputs[0]), unsafe.Sizeof(inputs[0]))
}

func sendInput(count int, first unsafe.Pointer, size uintptr) error {
	sent, _, callErr := procSendInput.Call(uintptr(count), uintptr(first), size)
	if sent != uintptr(count) {
		if callErr != nil && callErr != syscall.Errno(0) {
			return callErr
		}
		return fmt.Errorf("SendInput sent %d of %d inputs", sent, count)
	}
	return nil
}

// PressedKeys reads the asynchronous state of every mapped key.
func (b *Backend) PressedKeys() macro.KeySet {
	pressed := make(macro.KeySet)
	for _, key := range macro.SupportedKeys() {
		if isKeyDown(key) {
			pressed[key] = struct{}{}
		}
	}
	return pressed
}

func isKeyDown(key macro.Key) bool {
	vk, ok := KeyToVK(key)
	if !ok {
		return false
	}
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(state)&0x8000 != 0
}

func (b *Backend) Close() error {
	return nil
}

func ListInputDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{
		{
			Path:      "windows-global",
			Name:      "Windows SendInput / GetAsyncKeyState",
			IsVirtual: false,
			IsPointer: true,
		},
	}, nil
}
