package macro

import (
	"fmt"
	"math/rand"
)

// actionLoop waits a jittered interval and fires the macro's action whenever
// its toggle is enabled. Synthesis failures skip one firing and never end
// the loop.
func (e *Engine) actionLoop(runID string, g *gate, m *macroState, rng *rand.Rand) {
	defer g.wg.Done()

	def := m.def
	fire, err := e.resolveAction(def.Action)
	if err != nil {
		e.logger.Error("Macro disabled: action cannot be resolved", "run", runID, "macro", m.index, "err", err)
		m.abort(err)
		return
	}

	e.logger.Info(
		"Macro ready",
		"run", runID,
		"macro", m.index,
		"action", def.Action.Describe(),
		"interval_ms", def.IntervalBaseMs,
		"variance_ms", def.IntervalVarianceMs,
		"toggle", def.ToggleHotkey,
		"enabled", m.toggle.Enabled(),
	)

	for g.running.Load() {
		interval := ComputeInterval(def.IntervalBaseMs, def.IntervalVarianceMs, rng)
		if !g.sleep(interval, m.abortCh) {
			return
		}
		if !m.toggle.Enabled() {
			continue
		}

		if err := fire(); err != nil {
			m.failures.Add(1)
			e.logger.Warn(
				"Macro firing failed",
				"run", runID,
				"macro", m.index,
				"err", fmt.Errorf("%w: %v", ErrSynthesisFailure, err),
			)
			continue
		}
		m.fired.Add(1)
		e.logger.Debug("Macro fired", "macro", m.index, "action", def.Action.Describe(), "interval", interval)
	}
}

func (e *Engine) resolveAction(action Action) (func() error, error) {
	switch action.Kind {
	case ActionKeyboard:
		key, err := ParseKey(action.Key)
		if err != nil {
			return nil, err
		}
		return func() error { return e.synth.ClickKey(key) }, nil
	case ActionMouse:
		button := action.Button
		if !button.Valid() {
			return nil, fmt.Errorf("%w: no mouse button", ErrInvalidMacro)
		}
		return func() error { return e.synth.ClickButton(button) }, nil
	default:
		return nil, fmt.Errorf("%w: unknown action type", ErrInvalidMacro)
	}
}

// hotkeyLoop polls the pressed-key set at a fixed cadence and flips the
// macro's toggle on each rising edge of its hotkey, then pauses for the
// debounce window so one physical press toggles once.
func (e *Engine) hotkeyLoop(runID string, g *gate, m *macroState) {
	defer g.wg.Done()

	hotkey, err := ParseKey(m.def.ToggleHotkey)
	if err != nil {
		err = fmt.Errorf("toggle hotkey: %w", err)
		e.logger.Error("Macro disabled: toggle hotkey cannot be resolved", "run", runID, "macro", m.index, "err", err)
		m.abort(err)
		return
	}

	lastPressed := false
	for g.running.Load() {
		if !g.sleep(e.pollInterval, m.abortCh) {
			return
		}

		pressed := e.poller.PressedKeys().Has(hotkey)
		if pressed && !lastPressed {
			if m.toggle.Flip() {
				e.logger.Info(fmt.Sprintf("Macro #%d ENABLED - press %s to disable", m.index, m.def.ToggleHotkey), "run", runID)
			} else {
				e.logger.Info(fmt.Sprintf("Macro #%d DISABLED - press %s to enable", m.index, m.def.ToggleHotkey), "run", runID)
			}
			if !g.sleep(e.debounce, m.abortCh) {
				return
			}
		}
		lastPressed = pressed
	}
}
