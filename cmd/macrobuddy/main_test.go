package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/loonghao/poe2-macro-buddy/internal/control/client"
	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const singleMacroConfig = `macros:
  - action_type: keyboard
    key: q
    interval_ms: 1000
    random_variance_ms: 0
    toggle_hotkey: F5
    enabled_by_default: false
`

const duplicateHotkeyConfig = `macros:
  - key: q
    interval_ms: 1000
    toggle_hotkey: F5
  - key: w
    interval_ms: 1000
    toggle_hotkey: f5
`

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for raw, want := range tests {
		got, err := parseLogLevel(raw)
		if err != nil {
			t.Fatalf("parseLogLevel(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := parseLogLevel("verbose"); err == nil {
		t.Fatalf("parseLogLevel(verbose) expected error")
	}
}

func TestParseOptionsDefaults(t *testing.T) {
	opts, err := parseOptions(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseOptions() error = %v", err)
	}
	if !opts.ui || !opts.watch || opts.noControl {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if opts.backend != "auto" {
		t.Fatalf("backend = %q, want auto", opts.backend)
	}
	if opts.logLevel != slog.LevelInfo {
		t.Fatalf("logLevel = %v, want info", opts.logLevel)
	}
	if opts.configPath == "" {
		t.Fatalf("configPath is empty")
	}
}

func TestParseOptionsCLIModes(t *testing.T) {
	for _, args := range [][]string{{"--cli"}, {"cli"}, {"--ui=false"}, {"--config", "x.toml", "cli"}} {
		opts, err := parseOptions(args, io.Discard)
		if err != nil {
			t.Fatalf("parseOptions(%v) error = %v", args, err)
		}
		if opts.ui {
			t.Fatalf("parseOptions(%v) left GUI mode on", args)
		}
	}
}

func TestParseOptionsRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"--backend", "bogus"},
		{"--log-level", "loud"},
		{"extra"},
		{"cli", "extra"},
		{"--config", " "},
	} {
		if _, err := parseOptions(args, io.Discard); err == nil {
			t.Fatalf("parseOptions(%v) expected error", args)
		}
	}
}

func TestParseOptionsAcceptsDryRun(t *testing.T) {
	opts, err := parseOptions([]string{"--backend", "DryRun", "--no-control", "--watch=false"}, io.Discard)
	if err != nil {
		t.Fatalf("parseOptions() error = %v", err)
	}
	if opts.backend != "dryrun" || !opts.noControl || opts.watch {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestLineSinkWriterSplitsLines(t *testing.T) {
	var got []string
	w := &lineSinkWriter{sink: func(line string) { got = append(got, line) }}

	_, _ = w.Write([]byte("first\nsec"))
	_, _ = w.Write([]byte("ond\n\n  third  \npartial"))

	want := []string{"first", "second", "third"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()

	valid := writeConfig(t, dir, singleMacroConfig)
	var stdout, stderr bytes.Buffer
	if code := run([]string{"check", "--config", valid}, &stdout, &stderr); code != 0 {
		t.Fatalf("check valid config exit = %d, stderr = %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "1 macros") {
		t.Fatalf("unexpected output: %q", stdout.String())
	}

	invalid := writeConfig(t, t.TempDir(), duplicateHotkeyConfig)
	stdout.Reset()
	stderr.Reset()
	if code := run([]string{"check", "--config", invalid}, &stdout, &stderr); code != 1 {
		t.Fatalf("check duplicate hotkeys exit = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "invalid configuration") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}

	unknown := writeConfig(t, t.TempDir(), strings.Replace(singleMacroConfig, "key: q", "key: hyperspace", 1))
	stderr.Reset()
	if code := run([]string{"check", "--config", unknown}, io.Discard, &stderr); code != 1 {
		t.Fatalf("check unknown key exit = %d, want 1", code)
	}

	if code := run([]string{"check", "--config", filepath.Join(dir, "missing.yaml")}, io.Discard, io.Discard); code != 1 {
		t.Fatalf("check missing file exit = %d, want 1", code)
	}
}

func TestRunCtlUsage(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"ctl"}, io.Discard, &stderr); code != 2 {
		t.Fatalf("ctl without command exit = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "usage") {
		t.Fatalf("expected usage, got %q", stderr.String())
	}
	if code := run([]string{"ctl", "toggle", "x"}, io.Discard, io.Discard); code != 2 {
		t.Fatalf("ctl toggle x exit = %d, want 2", code)
	}
	if code := run([]string{"ctl", "set", "0", "maybe"}, io.Discard, io.Discard); code != 2 {
		t.Fatalf("ctl set 0 maybe exit = %d, want 2", code)
	}
}

func TestParseOnOff(t *testing.T) {
	for _, raw := range []string{"on", "ON", "true", "1", "enabled"} {
		if v, err := parseOnOff(raw); err != nil || !v {
			t.Fatalf("parseOnOff(%q) = %v, %v", raw, v, err)
		}
	}
	for _, raw := range []string{"off", "false", "0", "Disable"} {
		if v, err := parseOnOff(raw); err != nil || v {
			t.Fatalf("parseOnOff(%q) = %v, %v", raw, v, err)
		}
	}
	if _, err := parseOnOff("later"); err == nil {
		t.Fatalf("parseOnOff(later) expected error")
	}
}

func TestPrintStatus(t *testing.T) {
	var out bytes.Buffer
	printStatus(&out, client.EngineStatus{
		Phase: "running",
		RunID: "abc",
		Macros: []client.MacroStatus{
			{Index: 0, Action: "key 1", ToggleHotkey: "F9", Enabled: true, Fired: 4},
			{Index: 1, Action: "key bogus", ToggleHotkey: "F10", Fault: "unresolved key symbol"},
		},
	})
	text := out.String()
	for _, want := range []string{"Engine: running (run abc)", "ENABLED", "DISABLED", "unresolved key symbol"} {
		if !strings.Contains(text, want) {
			t.Fatalf("status output missing %q:\n%s", want, text)
		}
	}
}

func newDryRunApp(t *testing.T, path string) *app {
	t.Helper()
	opts := options{configPath: path, backend: "dryrun", noControl: true}
	a, err := newApp(opts, discardLogger(), macro.WithPollInterval(time.Millisecond), macro.WithDebounce(time.Millisecond))
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.close)
	return a
}

func TestAppWritesDefaultConfigAndStarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	a := newDryRunApp(t, path)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if err := a.start(); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	if got := a.engine.Phase(); got != macro.PhaseRunning {
		t.Fatalf("phase = %v, want running", got)
	}
	if got := len(a.engine.Status()); got != 3 {
		t.Fatalf("len(Status()) = %d, want 3", got)
	}
}

func TestAppReloadKeepsRunningOnBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, singleMacroConfig)
	a := newDryRunApp(t, path)
	if err := a.start(); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	runID := a.engine.RunID()

	writeConfig(t, dir, duplicateHotkeyConfig)
	if err := a.reload("test"); err == nil {
		t.Fatalf("reload() expected error for duplicate hotkeys")
	}
	if got := a.engine.RunID(); got != runID {
		t.Fatalf("run changed after rejected reload: %q -> %q", runID, got)
	}
	if got := len(a.engine.Status()); got != 1 {
		t.Fatalf("len(Status()) = %d, want 1", got)
	}
}

func TestAppReloadRestartsWithNewDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, singleMacroConfig)
	a := newDryRunApp(t, path)
	if err := a.start(); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	runID := a.engine.RunID()

	writeConfig(t, dir, singleMacroConfig+`  - action_type: mouse
    mouse_button: right
    interval_ms: 500
    toggle_hotkey: F6
`)
	if err := a.reload("test"); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	if got := a.engine.RunID(); got == runID || got == "" {
		t.Fatalf("expected a new run after reload, got %q (was %q)", got, runID)
	}
	statuses := a.engine.Status()
	if len(statuses) != 2 {
		t.Fatalf("len(Status()) = %d, want 2", len(statuses))
	}
	if got := statuses[1].Action.Describe(); got != "mouse right" {
		t.Fatalf("second macro = %q, want mouse right", got)
	}
}

func TestAppReloadWhileStoppedDoesNotStart(t *testing.T) {
	path := writeConfig(t, t.TempDir(), singleMacroConfig)
	a := newDryRunApp(t, path)

	if err := a.reload("test"); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	if got := a.engine.Phase(); got != macro.PhaseIdle {
		t.Fatalf("phase = %v, want idle", got)
	}
}
