package linuxinput

import (
	"sync"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

// keyState tracks held keys per source device. A key counts as pressed when
// any device holds it.
type keyState struct {
	mu   sync.Mutex
	held map[string]map[macro.Key]struct{}
}

func newKeyState() *keyState {
	return &keyState{held: make(map[string]map[macro.Key]struct{})}
}

// apply records one EV_KEY event. Value 0 is release, 1 press, 2 autorepeat.
func (s *keyState) apply(path string, code uint16, value int32) {
	key := macro.Key(code)
	if !key.Known() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.held[path]
	if value == 0 {
		delete(keys, key)
		return
	}
	if keys == nil {
		keys = make(map[macro.Key]struct{})
		s.held[path] = keys
	}
	keys[key] = struct{}{}
}

// reset replaces everything known about one device, e.g. after the kernel
// dropped events for it.
func (s *keyState) reset(path string, pressed []uint16) {
	keys := make(map[macro.Key]struct{}, len(pressed))
	for _, code := range pressed {
		if key := macro.Key(code); key.Known() {
			keys[key] = struct{}{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[path] = keys
}

func (s *keyState) forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, path)
}

func (s *keyState) snapshot() macro.KeySet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(macro.KeySet)
	for _, keys := range s.held {
		for key := range keys {
			out[key] = struct{}{}
		}
	}
	return out
}
