package control

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

const (
	// SocketFileName is the filename of the control socket within the runtime dir.
	SocketFileName = "control.sock"

	// SocketEnv overrides the control socket location.
	SocketEnv = "MACROBUDDY_CONTROL_SOCKET"

	// Action names supported by the control protocol.
	ActionStatus = "status"
	ActionToggle = "toggle"
	ActionSet    = "set"
	ActionStart  = "start"
	ActionStop   = "stop"
	ActionReload = "reload"

	// Response statuses.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a control API request.
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Response represents a control API response.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// MacroStatus is the wire form of one macro's runtime state.
type MacroStatus struct {
	Index        int    `json:"index"`
	Action       string `json:"action"`
	ToggleHotkey string `json:"toggle_hotkey"`
	Enabled      bool   `json:"enabled"`
	Fired        uint64 `json:"fired"`
	Failures     uint64 `json:"failures"`
	Fault        string `json:"fault,omitempty"`
}

// EngineStatus describes the engine phase and every running macro.
type EngineStatus struct {
	Phase  string        `json:"phase"`
	RunID  string        `json:"run_id,omitempty"`
	Macros []MacroStatus `json:"macros"`
}

// ToggleResult reports the state a macro was left in.
type ToggleResult struct {
	Index   int  `json:"index"`
	Enabled bool `json:"enabled"`
}

func macroStatusFrom(st macro.Status) MacroStatus {
	return MacroStatus{
		Index:        st.Index,
		Action:       st.Action.Describe(),
		ToggleHotkey: st.ToggleHotkey,
		Enabled:      st.Enabled,
		Fired:        st.Fired,
		Failures:     st.Failures,
		Fault:        st.Fault,
	}
}

// DefaultSocketPath returns the expected location of the control socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv(SocketEnv); env != "" {
		return env, nil
	}
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "macrobuddy", SocketFileName), nil
}
