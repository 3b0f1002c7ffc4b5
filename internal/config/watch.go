package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher turns bursts of writes to a configuration file into single reload
// requests.
type Watcher struct {
	target   string
	debounce time.Duration
	logger   macro.Logger
	fs       *fsnotify.Watcher
	requests chan string
}

// NewWatcher watches path and its parent directory, so editors that replace
// the file through a rename are still noticed.
func NewWatcher(path string, logger macro.Logger, debounce time.Duration) (*Watcher, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	if err := fsw.Add(target); err != nil {
		logger.Debug("Unable to watch config file directly", "path", target, "err", err)
	}

	return &Watcher{
		target:   filepath.Clean(target),
		debounce: debounce,
		logger:   logger,
		fs:       fsw,
		requests: make(chan string, 1),
	}, nil
}

// Requests delivers one reason string per debounced change.
func (w *Watcher) Requests() <-chan string {
	return w.requests
}

// Run pumps filesystem events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerCh:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case w.requests <- "config file updated":
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "err", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}
