//go:build linux

package x11input

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

// Backend synthesizes input through the XTEST extension and reads the global
// key state with QueryKeymap.
type Backend struct {
	xu      *xgbutil.XUtil
	conn    *xgb.Conn
	rootWin xproto.Window
	logger  macro.Logger

	mu           sync.Mutex
	keycodes     map[macro.Key]xproto.Keycode
	keycodeToKey map[xproto.Keycode]macro.Key
	pollFailed   bool
	closed       bool
}

func New(logger macro.Logger) (*Backend, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init XTEST: %w", err)
	}
	keybind.Initialize(xu)

	b := &Backend{
		xu:           xu,
		conn:         conn,
		rootWin:      xu.RootWin(),
		logger:       logger,
		keycodes:     make(map[macro.Key]xproto.Keycode),
		keycodeToKey: make(map[xproto.Keycode]macro.Key),
	}
	b.buildKeymap()
	return b, nil
}

// buildKeymap resolves every supported key once. Keys the current keyboard
// layout cannot produce are left out and fail at click time.
func (b *Backend) buildKeymap() {
	unresolved := 0
	for _, key := range macro.SupportedKeys() {
		sym, ok := keysymName(key)
		if !ok {
			unresolved++
			continue
		}
		keycodes := keybind.StrToKeycodes(b.xu, sym)
		if len(keycodes) == 0 {
			unresolved++
			continue
		}
		sort.Slice(keycodes, func(i, j int) bool { return keycodes[i] < keycodes[j] })
		b.keycodes[key] = keycodes[0]
		for _, kc := range keycodes {
			if _, taken := b.keycodeToKey[kc]; !taken {
				b.keycodeToKey[kc] = key
			}
		}
	}
	b.logger.Debug("X11 keymap resolved", "keys", len(b.keycodes), "unresolved", unresolved)
}

func (b *Backend) ClickKey(key macro.Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("x11 backend closed")
	}

	keycode, ok := b.keycodes[key]
	if !ok {
		return fmt.Errorf("no X11 keycode for %s", key)
	}
	if err := b.fake(xproto.KeyPress, byte(keycode)); err != nil {
		return err
	}
	if err := b.fake(xproto.KeyRelease, byte(keycode)); err != nil {
		return err
	}
	b.conn.Sync()
	return nil
}

func (b *Backend) ClickButton(button macro.MouseButton) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("x11 backend closed")
	}

	detail, ok := xButton(button)
	if !ok {
		return fmt.Errorf("unsupported mouse button %s", button)
	}
	if err := b.fake(xproto.ButtonPress, detail); err != nil {
		return err
	}
	if err := b.fake(xproto.ButtonRelease, detail); err != nil {
		return err
	}
	b.conn.Sync()
	return nil
}

func (b *Backend) fake(eventType, detail byte) error {
	return xtest.FakeInputChecked(
		b.conn,
		eventType,
		detail,
		xproto.TimeCurrentTime,
		b.rootWin,
		0,
		0,
		0,
	).Check()
}

// PressedKeys reports the keys held right now. A failed query reads as
// nothing pressed and is logged once until the next success.
func (b *Backend) PressedKeys() macro.KeySet {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return macro.KeySet{}
	}

	reply, err := xproto.QueryKeymap(b.conn).Reply()
	if err != nil {
		if !b.pollFailed {
			b.logger.Warn("X11 keymap query failed", "err", err)
			b.pollFailed = true
		}
		return macro.KeySet{}
	}
	b.pollFailed = false
	return pressedFromKeymap(reply.Keys, b.keycodeToKey)
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.conn.Close()
	return nil
}

// ListInputDevices reports the single logical device the X server exposes.
func ListInputDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{
		{
			Path:      "x11-global",
			Name:      "X11 Global Input",
			IsVirtual: false,
			IsPointer: true,
		},
	}, nil
}
