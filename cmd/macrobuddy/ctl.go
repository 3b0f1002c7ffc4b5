package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/loonghao/poe2-macro-buddy/internal/config"
	"github.com/loonghao/poe2-macro-buddy/internal/control/client"
)

// runCheck validates a configuration file without starting anything.
func runCheck(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("macrobuddy check", flag.ContinueOnError)
	flags.SetOutput(stderr)
	path := flags.String("config", config.DefaultPath(), "Macro configuration file to validate.")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
		return 2
	}

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 1
	}
	if err := cfg.Lint(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Configuration is valid (%d macros)\n", len(cfg.Macros))
	return 0
}

const ctlUsage = "usage: macrobuddy ctl [--socket path] status|toggle <index>|set <index> on|off|start|stop|reload"

// runCtl talks to a running instance over the control socket.
func runCtl(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("macrobuddy ctl", flag.ContinueOnError)
	flags.SetOutput(stderr)
	socket := flags.String("socket", "", "Control socket path.")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := flags.Args()
	if len(rest) == 0 {
		fmt.Fprintln(stderr, ctlUsage)
		return 2
	}

	c, err := client.New(*socket)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	ctx := context.Background()

	switch cmd, params := rest[0], rest[1:]; cmd {
	case "status":
		status, err := c.Status(ctx)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		printStatus(stdout, status)
	case "toggle":
		if len(params) != 1 {
			fmt.Fprintln(stderr, ctlUsage)
			return 2
		}
		index, err := strconv.Atoi(params[0])
		if err != nil {
			fmt.Fprintf(stderr, "invalid macro index %q\n", params[0])
			return 2
		}
		enabled, err := c.Toggle(ctx, index)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "Macro #%d %s\n", index, enabledWord(enabled))
	case "set":
		if len(params) != 2 {
			fmt.Fprintln(stderr, ctlUsage)
			return 2
		}
		index, err := strconv.Atoi(params[0])
		if err != nil {
			fmt.Fprintf(stderr, "invalid macro index %q\n", params[0])
			return 2
		}
		enabled, err := parseOnOff(params[1])
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		if err := c.SetEnabled(ctx, index, enabled); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "Macro #%d %s\n", index, enabledWord(enabled))
	case "start":
		status, err := c.Start(ctx)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		printStatus(stdout, status)
	case "stop":
		if err := c.Stop(ctx); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, "Stopped")
	case "reload":
		if err := c.Reload(ctx); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, "Reloaded")
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s\n", cmd, ctlUsage)
		return 2
	}
	return 0
}

func printStatus(w io.Writer, status client.EngineStatus) {
	fmt.Fprintf(w, "Engine: %s", status.Phase)
	if status.RunID != "" {
		fmt.Fprintf(w, " (run %s)", status.RunID)
	}
	fmt.Fprintln(w)
	if len(status.Macros) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tACTION\tHOTKEY\tSTATE\tFIRED\tFAILED\tFAULT")
	for _, m := range status.Macros {
		fault := m.Fault
		if fault == "" {
			fault = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n", m.Index, m.Action, m.ToggleHotkey, enabledWord(m.Enabled), m.Fired, m.Failures, fault)
	}
	_ = tw.Flush()
}

func enabledWord(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "enable", "enabled":
		return true, nil
	case "off", "false", "0", "disable", "disabled":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state %q (expected on|off)", value)
	}
}
