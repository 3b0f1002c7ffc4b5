package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/loonghao/poe2-macro-buddy/internal/adapters/dryrun"
	"github.com/loonghao/poe2-macro-buddy/internal/config"
	"github.com/loonghao/poe2-macro-buddy/internal/control"
	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

type inputBackend interface {
	macro.Synthesizer
	macro.KeyPoller
	Close() error
}

func openInputBackend(choice, devicePath string, logger *slog.Logger) (inputBackend, error) {
	if choice == "dryrun" {
		logger.Info("Backend", "name", "dryrun")
		return dryrun.New(logger), nil
	}
	return openPlatformBackend(choice, devicePath, logger)
}

// app owns the engine and the configuration it was started from. Start,
// Stop and Reload are shared by the GUI, the control socket and the config
// watcher.
type app struct {
	opts    options
	logger  *slog.Logger
	backend inputBackend
	engine  *macro.Engine

	mu        sync.Mutex
	lastGood  []byte
	closeOnce sync.Once
}

func newApp(opts options, logger *slog.Logger, engineOpts ...macro.Option) (*app, error) {
	if _, created, err := config.LoadOrDefault(opts.configPath); err != nil {
		return nil, err
	} else if created {
		logger.Info("Wrote default configuration", "path", opts.configPath)
	}

	backend, err := openInputBackend(opts.backend, opts.devicePath, logger)
	if err != nil {
		return nil, err
	}
	engine, err := macro.NewEngine(backend, backend, logger, engineOpts...)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return &app{
		opts:    opts,
		logger:  logger,
		backend: backend,
		engine:  engine,
	}, nil
}

func (a *app) load() ([]macro.Definition, []byte, error) {
	cfg, raw, err := config.LoadWithSource(a.opts.configPath)
	if err != nil {
		return nil, raw, err
	}
	defs, err := cfg.Definitions()
	if err != nil {
		return nil, raw, err
	}
	if err := cfg.Lint(); err != nil {
		a.logger.Warn("Configuration has lint warnings", "err", err)
	}
	return defs, raw, nil
}

// start loads the configuration from disk and launches every macro.
func (a *app) start() error {
	defs, raw, err := a.load()
	if err != nil {
		return err
	}
	if err := a.engine.Start(defs); err != nil {
		return err
	}
	a.remember(raw)
	for idx, def := range defs {
		a.logger.Info(
			fmt.Sprintf("Macro #%d: %s every %dms ±%dms, toggle %s", idx, def.Action.Describe(), def.IntervalBaseMs, def.IntervalVarianceMs, def.ToggleHotkey),
			"enabled", def.EnabledByDefault,
		)
	}
	return nil
}

func (a *app) stop() {
	a.engine.Stop()
}

// reload re-reads the configuration. A broken file is rejected and the
// running macros are left alone; otherwise a running engine is restarted
// with the new definitions.
func (a *app) reload(reason string) error {
	defs, raw, err := a.load()
	if err == nil {
		err = macro.Validate(defs)
	}
	if err != nil {
		if raw != nil {
			if diff := a.diffFromLastGood(raw); diff != "" {
				a.logger.Info("Rejected configuration diff", "diff", diff)
			}
		}
		a.logger.Error("Config reload rejected; keeping current macros", "reason", reason, "err", err)
		return err
	}

	if a.engine.Phase() != macro.PhaseRunning {
		a.remember(raw)
		a.logger.Info("Config reloaded", "reason", reason, "macros", len(defs))
		return nil
	}

	a.engine.Stop()
	a.engine.Wait()
	if err := a.engine.Start(defs); err != nil && !errors.Is(err, macro.ErrAlreadyRunning) {
		a.logger.Error("Restart after reload failed", "reason", reason, "err", err)
		return err
	}
	a.remember(raw)
	a.logger.Info("Config reloaded", "reason", reason, "macros", len(defs), "run", a.engine.RunID())
	return nil
}

// saveConfig writes edited macros to the configuration file. The watcher
// picks the change up when it runs; otherwise the reload happens here.
func (a *app) saveConfig(drafts []macroDraft) error {
	cfg, err := saveDrafts(a.opts.configPath, drafts)
	if err != nil {
		return err
	}
	a.logger.Info("Configuration saved", "path", a.opts.configPath, "macros", len(cfg.Macros))
	if a.opts.watch {
		return nil
	}
	return a.reload("configuration saved")
}

func (a *app) remember(raw []byte) {
	a.mu.Lock()
	a.lastGood = append(a.lastGood[:0], raw...)
	a.mu.Unlock()
}

func (a *app) diffFromLastGood(raw []byte) string {
	a.mu.Lock()
	prev := append([]byte(nil), a.lastGood...)
	a.mu.Unlock()
	if prev == nil {
		return ""
	}
	return config.DiffSerialized(prev, raw)
}

// serveBackground starts the control socket and the config watcher. Both
// stop when ctx is done.
func (a *app) serveBackground(ctx context.Context) {
	if !a.opts.noControl {
		server, err := control.NewServer(a.engine, a.logger, control.Hooks{
			Start:  a.start,
			Stop:   a.stop,
			Reload: a.reload,
		}, a.opts.socketPath)
		if err != nil {
			a.logger.Warn("Control socket disabled", "err", err)
		} else {
			go func() {
				if err := server.Serve(ctx); err != nil {
					a.logger.Warn("Control socket disabled", "err", err)
				}
			}()
		}
	}

	if a.opts.watch {
		watcher, err := config.NewWatcher(a.opts.configPath, a.logger, config.DefaultWatchDebounce)
		if err != nil {
			a.logger.Warn("Config watching disabled", "err", err)
			return
		}
		go watcher.Run(ctx)
		go func() {
			defer watcher.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case reason := <-watcher.Requests():
					_ = a.reload(reason)
				}
			}
		}()
	}
}

func (a *app) close() {
	a.closeOnce.Do(func() {
		a.engine.Stop()
		a.engine.Wait()
		if err := a.backend.Close(); err != nil {
			a.logger.Warn("Closing input backend failed", "err", err)
		}
	})
}
