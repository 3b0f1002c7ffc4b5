package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/loonghao/poe2-macro-buddy/internal/config"
)

type options struct {
	configPath  string
	backend     string
	devicePath  string
	socketPath  string
	listDevices bool
	noControl   bool
	watch       bool
	ui          bool
	logLevel    slog.Level
}

type lineSinkWriter struct {
	sink  func(line string)
	mu    sync.Mutex
	lines bytes.Buffer
}

func (w *lineSinkWriter) Write(p []byte) (int, error) {
	if w.sink == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx == -1 {
			_, _ = w.lines.Write(p)
			break
		}
		_, _ = w.lines.Write(p[:idx])
		line := strings.TrimSpace(w.lines.String())
		w.lines.Reset()
		if line != "" {
			w.sink(line)
		}
		p = p[idx+1:]
	}
	return total, nil
}

// newSlogLogger writes to stderr and, when sink is set, to the sink line by
// line. quietStderr drops the stderr copy unless DEBUG=1.
func newSlogLogger(level slog.Level, stderr io.Writer, sink func(line string), quietStderr bool) *slog.Logger {
	var outputs []io.Writer
	if stderr != nil && (!quietStderr || debugLogsEnabled()) {
		outputs = append(outputs, stderr)
	}
	if sink != nil {
		outputs = append(outputs, &lineSinkWriter{sink: sink})
	}

	out := io.Discard
	switch len(outputs) {
	case 0:
	case 1:
		out = outputs[0]
	default:
		out = io.MultiWriter(outputs...)
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

func debugLogsEnabled() bool {
	return strings.TrimSpace(os.Getenv("DEBUG")) == "1"
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	opts := options{}
	flags := flag.NewFlagSet("macrobuddy", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var backendRaw string
	var logLevelRaw string
	var cliMode bool

	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "Macro configuration file (.yaml or .toml). Created with defaults if missing.")
	flags.StringVar(&backendRaw, "backend", "auto", "Input backend. Linux: auto|wayland|x11|dryrun. Windows: auto|windows|dryrun.")
	flags.StringVar(&opts.devicePath, "device", "", "Keyboard event device to poll hotkeys from, e.g. /dev/input/event4. All keyboards if omitted.")
	flags.StringVar(&opts.socketPath, "socket", "", "Control socket path. Defaults to $XDG_RUNTIME_DIR/macrobuddy/control.sock.")
	flags.BoolVar(&opts.noControl, "no-control", false, "Do not open the control socket.")
	flags.BoolVar(&opts.watch, "watch", true, "Reload macros when the configuration file changes.")
	flags.BoolVar(&opts.listDevices, "list-devices", false, "Print available input devices and exit.")
	flags.BoolVar(&opts.ui, "ui", true, "Start desktop GUI (Fyne) by default. Use --ui=false, --cli or the cli argument for terminal mode.")
	flags.BoolVar(&cliMode, "cli", false, "Force terminal mode (disables GUI).")
	flags.StringVar(&logLevelRaw, "log-level", "info", "Log verbosity (default: info). Allowed: debug, info, warning, error.")

	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	rest := flags.Args()
	if len(rest) > 0 && rest[0] == "cli" {
		cliMode = true
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	if cliMode {
		opts.ui = false
	}
	if strings.TrimSpace(opts.configPath) == "" {
		return opts, errors.New("--config must not be empty")
	}

	parsedLevel, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return opts, err
	}
	backendChoice, err := parseBackendChoice(backendRaw)
	if err != nil {
		return opts, err
	}

	opts.backend = backendChoice
	opts.logLevel = parsedLevel
	return opts, nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "check":
			return runCheck(args[1:], stdout, stderr)
		case "ctl":
			return runCtl(args[1:], stdout, stderr)
		}
	}

	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if opts.listDevices {
		if err := listInputDevices(opts.backend, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if opts.ui {
		if err := runUI(opts, stderr); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newSlogLogger(opts.logLevel, stderr, nil, false)
	if err := runCLI(ctx, opts, logger); err != nil {
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
			return 1
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// runCLI starts every configured macro and blocks until ctx is done.
func runCLI(ctx context.Context, opts options, logger *slog.Logger) error {
	a, err := newApp(opts, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.start(); err != nil {
		return err
	}
	a.serveBackground(ctx)

	logger.Info("Macros running. Press Ctrl+C to stop")
	<-ctx.Done()
	logger.Info("Shutting down")
	a.stop()
	a.engine.Wait()
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
