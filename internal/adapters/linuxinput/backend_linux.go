//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

// Backend emits macro input from a uinput virtual device and tracks hotkeys
// by reading the physical keyboards directly. It works under Wayland, where
// neither XTEST nor a global key query exists.
type Backend struct {
	injector *evdev.InputDevice
	sources  []*evdev.InputDevice
	state    *keyState
	logger   macro.Logger

	injectMu sync.Mutex

	stopCh    chan struct{}
	stopOnce  sync.Once
	readersWG sync.WaitGroup
}

// Open creates the virtual device and starts reading hotkey sources.
// devicePath restricts reading to a single device.
func Open(devicePath string, logger macro.Logger) (*Backend, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	sources, err := openKeyboardSources(devicePath)
	if err != nil {
		return nil, err
	}
	closeSources := func() {
		for _, dev := range sources {
			_ = dev.Close()
		}
	}

	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	injector, err := evdev.CreateDevice(VirtualDeviceName, id, uinputCapabilities())
	if err != nil {
		closeSources()
		return nil, fmt.Errorf("create uinput device: %w", err)
	}

	b := &Backend{
		injector: injector,
		sources:  sources,
		state:    newKeyState(),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}

	for _, dev := range sources {
		if err := dev.NonBlock(); err != nil {
			_ = injector.Close()
			closeSources()
			return nil, fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
		}
		b.resync(dev)
		name, _ := dev.Name()
		logger.Info("Using hotkey source device", "path", dev.Path(), "name", name)
	}

	for _, dev := range sources {
		b.readersWG.Add(1)
		go b.readLoop(dev)
	}
	return b, nil
}

func uinputCapabilities() map[evdev.EvType][]evdev.EvCode {
	keys := macro.SupportedKeys()
	codes := make([]evdev.EvCode, 0, len(keys)+3)
	for _, key := range keys {
		codes = append(codes, keyCode(key))
	}
	codes = append(codes, evdev.BTN_LEFT, evdev.BTN_RIGHT, evdev.BTN_MIDDLE)
	return map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: codes,
		evdev.EV_REL: {evdev.REL_X, evdev.REL_Y},
	}
}

func (b *Backend) ClickKey(key macro.Key) error {
	if !key.Known() {
		return fmt.Errorf("unsupported key %s", key)
	}
	return b.click(keyCode(key))
}

func (b *Backend) ClickButton(button macro.MouseButton) error {
	code, ok := buttonCode(button)
	if !ok {
		return fmt.Errorf("unsupported mouse button %s", button)
	}
	return b.click(code)
}

func (b *Backend) click(code evdev.EvCode) error {
	b.injectMu.Lock()
	defer b.injectMu.Unlock()

	events := []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: code, Value: 1},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
		{Type: evdev.EV_KEY, Code: code, Value: 0},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
	}
	for i := range events {
		if err := b.injector.WriteOne(&events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) PressedKeys() macro.KeySet {
	return b.state.snapshot()
}

func (b *Backend) Close() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopCh)
		for _, dev := range b.sources {
			_ = dev.Close()
		}
		b.readersWG.Wait()

		b.injectMu.Lock()
		err = b.injector.Close()
		b.injectMu.Unlock()
	})
	return err
}

func (b *Backend) readLoop(dev *evdev.InputDevice) {
	defer b.readersWG.Done()

	path := dev.Path()
	defer b.state.forget(path)
	for {
		events, err := dev.ReadSlice(64)
		if err != nil {
			if b.stopped() || isDeviceClosedError(err) {
				return
			}
			if isWouldBlockError(err) {
				if !b.sleepWithStop(10 * time.Millisecond) {
					return
				}
				continue
			}
			b.logger.Warn("Read failed", "path", path, "err", err)
			if !b.sleepWithStop(100 * time.Millisecond) {
				return
			}
			continue
		}

		for _, event := range events {
			switch {
			case event.Type == evdev.EV_KEY:
				b.state.apply(path, uint16(event.Code), event.Value)
			case event.Type == evdev.EV_SYN && event.Code == evdev.SYN_DROPPED:
				b.resync(dev)
			}
		}
	}
}

// resync reloads the full key state of dev from the kernel.
func (b *Backend) resync(dev *evdev.InputDevice) {
	state, err := dev.State(evdev.EV_KEY)
	if err != nil {
		b.logger.Debug("Key state query failed", "path", dev.Path(), "err", err)
		b.state.reset(dev.Path(), nil)
		return
	}
	pressed := make([]uint16, 0, len(state))
	for code, down := range state {
		if down {
			pressed = append(pressed, uint16(code))
		}
	}
	b.state.reset(dev.Path(), pressed)
}

func (b *Backend) stopped() bool {
	select {
	case <-b.stopCh:
		return true
	default:
		return false
	}
}

func (b *Backend) sleepWithStop(duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-b.stopCh:
		return false
	case <-timer.C:
		return true
	}
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
