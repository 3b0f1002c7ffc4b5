//go:build !linux && !windows

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "dryrun":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (this platform supports auto|dryrun)", value)
	}
}

func listInputDevices(_ string, _ io.Writer) error {
	return fmt.Errorf("unsupported platform")
}

func permissionDeniedHint() string {
	return "unsupported platform"
}

func openPlatformBackend(_ string, _ string, _ *slog.Logger) (inputBackend, error) {
	return nil, fmt.Errorf("unsupported platform: only --backend dryrun is available")
}
