package macro

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultDebounce     = 300 * time.Millisecond
)

// Phase is the lifecycle state of an Engine.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseStarting
	PhaseRunning
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	default:
		return "unknown"
	}
}

type Option func(*Engine)

// WithPollInterval sets the hotkey polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithDebounce sets the pause taken after a hotkey toggles its macro.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.debounce = d
		}
	}
}

// WithSeed makes interval jitter deterministic.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

// Engine runs a set of macros. Each macro gets an action loop and a hotkey
// poll loop; Start and Stop govern all of them together.
type Engine struct {
	synth  Synthesizer
	poller KeyPoller
	logger Logger

	pollInterval time.Duration
	debounce     time.Duration
	seed         int64
	seeded       bool

	phase atomic.Int32

	mu   sync.Mutex
	run  *run
	last *run
}

// run is everything owned by one Start..Stop cycle.
type run struct {
	id     string
	gate   *gate
	defs   []Definition
	macros []*macroState
}

// gate is the engine-wide running flag shared by every loop of a run. The
// stop channel only shortens sleeps; the flag is what loops check.
type gate struct {
	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func (g *gate) halt() {
	g.running.Store(false)
	g.stopOnce.Do(func() {
		close(g.stop)
	})
}

// sleep waits for d and reports whether the loop should keep going.
func (g *gate) sleep(d time.Duration, abort <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-g.stop:
		return false
	case <-abort:
		return false
	case <-timer.C:
		return g.running.Load()
	}
}

type macroState struct {
	index    int
	def      Definition
	toggle   *ToggleState
	fired    atomic.Uint64
	failures atomic.Uint64

	fault     atomic.Pointer[string]
	abortCh   chan struct{}
	abortOnce sync.Once
}

// abort stops both loops of this macro only.
func (m *macroState) abort(err error) {
	m.abortOnce.Do(func() {
		reason := err.Error()
		m.fault.Store(&reason)
		close(m.abortCh)
	})
}

func (m *macroState) status() Status {
	st := Status{
		Index:        m.index,
		Action:       m.def.Action,
		ToggleHotkey: m.def.ToggleHotkey,
		Enabled:      m.toggle.Enabled(),
		Fired:        m.fired.Load(),
		Failures:     m.failures.Load(),
	}
	if fault := m.fault.Load(); fault != nil {
		st.Fault = *fault
	}
	return st
}

func NewEngine(synth Synthesizer, poller KeyPoller, logger Logger, opts ...Option) (*Engine, error) {
	if synth == nil {
		return nil, fmt.Errorf("synthesizer is nil")
	}
	if poller == nil {
		return nil, fmt.Errorf("key poller is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	e := &Engine{
		synth:        synth,
		poller:       poller,
		logger:       logger,
		pollInterval: DefaultPollInterval,
		debounce:     DefaultDebounce,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

// Start validates defs and launches every macro. It returns once the loops
// are spawned and does not wait for any of them.
func (e *Engine) Start(defs []Definition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.run != nil {
		return ErrAlreadyRunning
	}

	e.phase.Store(int32(PhaseStarting))
	if err := Validate(defs); err != nil {
		e.phase.Store(int32(PhaseIdle))
		return err
	}

	r := &run{
		id:     uuid.NewString(),
		gate:   &gate{stop: make(chan struct{})},
		defs:   append([]Definition(nil), defs...),
		macros: make([]*macroState, len(defs)),
	}
	for idx, def := range r.defs {
		r.macros[idx] = &macroState{
			index:   idx,
			def:     def,
			toggle:  NewToggleState(def.EnabledByDefault),
			abortCh: make(chan struct{}),
		}
	}

	e.logger.Info("Starting macro engine", "run", r.id, "macros", len(r.defs))

	seed := e.seed
	if !e.seeded {
		seed = time.Now().UnixNano()
	}

	r.gate.running.Store(true)
	for _, m := range r.macros {
		r.gate.wg.Add(2)
		go e.actionLoop(r.id, r.gate, m, newJitterSource(seed+int64(m.index)))
		go e.hotkeyLoop(r.id, r.gate, m)
	}

	e.run = r
	e.last = r
	e.phase.Store(int32(PhaseRunning))
	return nil
}

// Stop clears the running flag and drops the active macro set. It is safe to
// call when idle and never waits for the loops to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	r := e.run
	e.run = nil
	e.phase.Store(int32(PhaseIdle))
	e.mu.Unlock()

	if r == nil {
		return
	}
	r.gate.halt()
	e.logger.Info("Macro engine stopped", "run", r.id)
}

// Wait blocks until every loop of the most recent run has exited. While the
// engine is running it blocks until Stop is called.
func (e *Engine) Wait() {
	e.mu.Lock()
	r := e.last
	e.mu.Unlock()
	if r != nil {
		r.gate.wg.Wait()
	}
}

// Status returns one entry per running macro in configuration order, or an
// empty slice when idle.
func (e *Engine) Status() []Status {
	e.mu.Lock()
	r := e.run
	e.mu.Unlock()

	if r == nil {
		return []Status{}
	}
	out := make([]Status, 0, len(r.macros))
	for _, m := range r.macros {
		out = append(out, m.status())
	}
	return out
}

// ToggleMacro flips the enabled state of the macro at index and returns the
// new value.
func (e *Engine) ToggleMacro(index int) (bool, error) {
	m, runID, err := e.macroAt(index)
	if err != nil {
		return false, err
	}
	enabled := m.toggle.Flip()
	e.logger.Info("Macro toggled", "run", runID, "macro", index, "enabled", enabled)
	return enabled, nil
}

// SetMacroEnabled forces the enabled state of the macro at index.
func (e *Engine) SetMacroEnabled(index int, enabled bool) error {
	m, runID, err := e.macroAt(index)
	if err != nil {
		return err
	}
	m.toggle.Set(enabled)
	e.logger.Info("Macro state set", "run", runID, "macro", index, "enabled", enabled)
	return nil
}

func (e *Engine) macroAt(index int) (*macroState, string, error) {
	e.mu.Lock()
	r := e.run
	e.mu.Unlock()

	if r == nil || index < 0 || index >= len(r.macros) {
		return nil, "", fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return r.macros[index], r.id, nil
}

// RunID identifies the active run; empty when idle.
func (e *Engine) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == nil {
		return ""
	}
	return e.run.id
}

// Definitions returns a copy of the active macro set.
func (e *Engine) Definitions() []Definition {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == nil {
		return nil
	}
	return append([]Definition(nil), e.run.defs...)
}
