//go:build linux

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/loonghao/poe2-macro-buddy/internal/adapters/linuxinput"
	"github.com/loonghao/poe2-macro-buddy/internal/adapters/x11input"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "wayland", "x11", "evdev", "dryrun":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (linux supports auto|wayland|x11|dryrun)", value)
	}
}

func listInputDevices(backend string, w io.Writer) error {
	switch resolveLinuxBackend(backend) {
	case "x11":
		devices, err := x11input.ListInputDevices()
		if err != nil {
			return err
		}
		for _, dev := range devices {
			fmt.Fprintf(w, "%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag(dev.IsVirtual), pointerTag(dev.IsPointer))
		}
		return nil
	default:
		devices, err := linuxinput.ListInputDevices()
		if err != nil {
			return err
		}
		for _, dev := range devices {
			kind := pointerTag(dev.IsPointer)
			if dev.IsKeyboard {
				kind = "keyboard"
			}
			fmt.Fprintf(w, "%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag(dev.IsVirtual), kind)
		}
		return nil
	}
}

func virtualTag(virtual bool) string {
	if virtual {
		return "virtual"
	}
	return "physical"
}

func pointerTag(pointer bool) string {
	if pointer {
		return "pointer"
	}
	return "non-pointer"
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend. On Wayland use root/udev rules for /dev/input + /dev/uinput. On X11 ensure an active X11 session and DISPLAY is set."
}

func openPlatformBackend(choice, devicePath string, logger *slog.Logger) (inputBackend, error) {
	switch resolveLinuxBackend(choice) {
	case "x11":
		if devicePath != "" {
			logger.Warn("--device is ignored on X11 backend")
		}
		backend, err := x11input.New(logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Backend", "name", "x11")
		return backend, nil
	default:
		backend, err := linuxinput.Open(devicePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Backend", "name", "wayland", "virtual_device", linuxinput.VirtualDeviceName)
		return backend, nil
	}
}

func resolveLinuxBackend(configured string) string {
	choice := strings.ToLower(strings.TrimSpace(configured))
	if choice == "" {
		choice = "auto"
	}
	if choice == "evdev" {
		choice = "wayland"
	}
	if choice != "auto" {
		return choice
	}

	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return "wayland"
	case "x11":
		return "x11"
	}

	if strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		return "wayland"
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "wayland"
}
