package dryrun

import (
	"testing"
	"time"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func TestPressedKeysIsACopy(t *testing.T) {
	b := New(noopLogger{})
	f9, _ := macro.ParseKey("F9")

	b.Press(f9)
	snapshot := b.PressedKeys()
	b.Release(f9)

	if !snapshot.Has(f9) {
		t.Fatalf("snapshot taken while pressed should contain F9")
	}
	if b.PressedKeys().Has(f9) {
		t.Fatalf("F9 should be released")
	}
}

func TestDrivesEngineHotkeys(t *testing.T) {
	b := New(noopLogger{})
	engine, err := macro.NewEngine(b, b, noopLogger{},
		macro.WithPollInterval(time.Millisecond),
		macro.WithDebounce(2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() {
		engine.Stop()
		engine.Wait()
	}()

	defs := []macro.Definition{
		{Action: macro.KeyboardAction("1"), IntervalBaseMs: 1, ToggleHotkey: "F9"},
	}
	if err := engine.Start(defs); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	f9, _ := macro.ParseKey("F9")
	b.Press(f9)

	deadline := time.Now().Add(time.Second)
	for b.Clicks() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("macro never fired after hotkey press; clicks=%d", b.Clicks())
		}
		time.Sleep(2 * time.Millisecond)
	}
	if !engine.Status()[0].Enabled {
		t.Fatalf("expected macro enabled after hotkey press")
	}
}
