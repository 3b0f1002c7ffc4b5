//go:build windows

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/loonghao/poe2-macro-buddy/internal/adapters/wininput"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "windows", "dryrun":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (windows supports auto|windows|dryrun)", value)
	}
}

func listInputDevices(_ string, w io.Writer) error {
	devices, err := wininput.ListInputDevices()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		virtualTag := "physical"
		if dev.IsVirtual {
			virtualTag = "virtual"
		}
		pointerTag := "non-pointer"
		if dev.IsPointer {
			pointerTag = "pointer"
		}
		fmt.Fprintf(w, "%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag, pointerTag)
	}
	return nil
}

func permissionDeniedHint() string {
	return "Permission denied injecting input. Run as Administrator when the target window runs elevated."
}

func openPlatformBackend(_ string, devicePath string, logger *slog.Logger) (inputBackend, error) {
	if devicePath != "" {
		logger.Warn("--device is ignored on Windows; hotkeys are read from the global key state")
	}
	backend, err := wininput.New(logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Input mode", "mode", "windows-sendinput")
	return backend, nil
}
