package dryrun

import (
	"sync"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

// Backend logs every click instead of sending it. Hotkeys can be driven by
// Press and Release, so the engine is usable on machines without an input
// backend.
type Backend struct {
	logger macro.Logger

	mu      sync.Mutex
	pressed macro.KeySet
	clicks  uint64
}

func New(logger macro.Logger) *Backend {
	return &Backend{logger: logger, pressed: make(macro.KeySet)}
}

func (b *Backend) ClickKey(key macro.Key) error {
	b.count()
	b.logger.Info("Dry-run key click", "key", key.String())
	return nil
}

func (b *Backend) ClickButton(button macro.MouseButton) error {
	b.count()
	b.logger.Info("Dry-run mouse click", "button", button.String())
	return nil
}

func (b *Backend) count() {
	b.mu.Lock()
	b.clicks++
	b.mu.Unlock()
}

// Clicks returns the number of clicks logged so far.
func (b *Backend) Clicks() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clicks
}

func (b *Backend) Press(keys ...macro.Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range keys {
		b.pressed[key] = struct{}{}
	}
}

func (b *Backend) Release(keys ...macro.Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range keys {
		delete(b.pressed, key)
	}
}

func (b *Backend) PressedKeys() macro.KeySet {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(macro.KeySet, len(b.pressed))
	for key := range b.pressed {
		out[key] = struct{}{}
	}
	return out
}

func (b *Backend) Close() error {
	return nil
}
