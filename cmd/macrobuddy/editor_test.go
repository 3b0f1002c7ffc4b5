package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loonghao/poe2-macro-buddy/internal/config"
	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

func TestDraftsFromConfigNormalizesSymbols(t *testing.T) {
	cfg := &config.Config{Macros: []config.MacroConfig{
		{Key: "KEY_E", IntervalMs: 1500, RandomVarianceMs: 300, ToggleHotkey: "f10"},
		{ActionType: "Mouse", MouseButton: "Left", IntervalMs: 800, ToggleHotkey: "F11", EnabledByDefault: true},
	}}

	got := draftsFromConfig(cfg)
	want := []macroDraft{
		{ActionType: "keyboard", Key: friendlyKeyName("e"), IntervalMs: "1500", VarianceMs: "300", Hotkey: "F10"},
		{ActionType: "mouse", MouseButton: "left", IntervalMs: "800", VarianceMs: "0", Hotkey: "F11", Enabled: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("drafts mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDraftAvoidsUsedKeysAndHotkeys(t *testing.T) {
	existing := draftsFromConfig(config.Default())

	draft := newDraft(existing)
	if draft.ActionType != "keyboard" {
		t.Fatalf("ActionType = %q, want keyboard", draft.ActionType)
	}
	if draft.Key != "2" {
		t.Fatalf("Key = %q, want 2 (1 and e are taken)", draft.Key)
	}
	if draft.Hotkey != "F1" {
		t.Fatalf("Hotkey = %q, want F1", draft.Hotkey)
	}

	withNew := append(existing, draft)
	cfg, err := configFromDrafts(withNew)
	if err != nil {
		t.Fatalf("configFromDrafts() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() with new draft error = %v", err)
	}
}

func TestConfigFromDraftsRejectsBadNumbers(t *testing.T) {
	for _, d := range []macroDraft{
		{ActionType: "keyboard", Key: "1", IntervalMs: "fast", Hotkey: "F9"},
		{ActionType: "keyboard", Key: "1", IntervalMs: "1000", VarianceMs: "-5", Hotkey: "F9"},
	} {
		if _, err := configFromDrafts([]macroDraft{d}); err == nil {
			t.Fatalf("configFromDrafts(%+v) expected error", d)
		}
	}
}

func TestConfigFromDraftsKeepsOnlyTheActiveActionField(t *testing.T) {
	cfg, err := configFromDrafts([]macroDraft{
		{ActionType: "mouse", Key: "q", MouseButton: "right", IntervalMs: "500", Hotkey: "F6"},
		{ActionType: "keyboard", Key: "q", MouseButton: "right", IntervalMs: "500", Hotkey: "F7"},
	})
	if err != nil {
		t.Fatalf("configFromDrafts() error = %v", err)
	}
	want := []config.MacroConfig{
		{ActionType: "mouse", MouseButton: "right", IntervalMs: 500, ToggleHotkey: "F6"},
		{ActionType: "keyboard", Key: "q", IntervalMs: 500, ToggleHotkey: "F7"},
	}
	if diff := cmp.Diff(want, cfg.Macros); diff != "" {
		t.Fatalf("macros mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveDraftsRejectsInvalidWithoutWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	tests := map[string][]macroDraft{
		"duplicate hotkey": {
			{ActionType: "keyboard", Key: "1", IntervalMs: "1000", Hotkey: "F9"},
			{ActionType: "keyboard", Key: "2", IntervalMs: "1000", Hotkey: "F9"},
		},
		"unknown key": {
			{ActionType: "keyboard", Key: "hyperspace", IntervalMs: "1000", Hotkey: "F9"},
		},
		"interval below floor": {
			{ActionType: "keyboard", Key: "1", IntervalMs: "10", VarianceMs: "0", Hotkey: "F9"},
		},
	}
	for name, drafts := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := saveDrafts(path, drafts)
			if !errors.Is(err, macro.ErrInvalidConfiguration) {
				t.Fatalf("saveDrafts() error = %v, want ErrInvalidConfiguration", err)
			}
			if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
				t.Fatalf("config written despite error: %v", statErr)
			}
		})
	}
}

func TestSaveDraftsWritesLoadableConfig(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			drafts := []macroDraft{
				{ActionType: "keyboard", Key: "q", IntervalMs: "1200", VarianceMs: "100", Hotkey: "F5", Enabled: true},
				{ActionType: "mouse", MouseButton: "middle", IntervalMs: "900", VarianceMs: "0", Hotkey: "F6"},
			}
			if _, err := saveDrafts(path, drafts); err != nil {
				t.Fatalf("saveDrafts() error = %v", err)
			}

			loaded, err := config.Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			got := draftsFromConfig(loaded)
			drafts[0].Key = friendlyKeyName("q")
			if diff := cmp.Diff(drafts, got); diff != "" {
				t.Fatalf("saved drafts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAppSaveConfigRestartsRunningEngine(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, singleMacroConfig)
	a := newDryRunApp(t, path)
	if err := a.start(); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	runID := a.engine.RunID()

	drafts := []macroDraft{
		{ActionType: "keyboard", Key: "q", IntervalMs: "1000", Hotkey: "F5"},
		{ActionType: "keyboard", Key: "w", IntervalMs: "1000", Hotkey: "F6"},
	}
	if err := a.saveConfig(drafts); err != nil {
		t.Fatalf("saveConfig() error = %v", err)
	}
	if got := a.engine.RunID(); got == runID {
		t.Fatalf("expected a new run after save")
	}
	if got := len(a.engine.Status()); got != 2 {
		t.Fatalf("len(Status()) = %d, want 2", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "F6") {
		t.Fatalf("saved config missing new macro:\n%s", data)
	}
}
