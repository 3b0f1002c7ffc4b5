package client

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loonghao/poe2-macro-buddy/internal/control"
)

func startTestServer(t *testing.T, handler func(net.Conn)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "socket")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen on unix socket: %v", err)
	}
	go func() {
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handler(conn)
	}()
	return path
}

func TestToggleSendsIndex(t *testing.T) {
	path := startTestServer(t, func(conn net.Conn) {
		defer conn.Close()
		var req control.Request
		if err := json.NewDecoder(conn).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Action != control.ActionToggle {
			t.Errorf("unexpected action %q", req.Action)
		}
		if idx, _ := req.Params["index"].(float64); idx != 2 {
			t.Errorf("unexpected index %v", req.Params["index"])
		}
		resp := control.Response{Status: control.StatusOK, Data: control.ToggleResult{Index: 2, Enabled: true}}
		_ = json.NewEncoder(conn).Encode(resp)
	})

	c, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	enabled, err := c.Toggle(context.Background(), 2)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !enabled {
		t.Fatalf("Toggle() = false, want true")
	}
}

func TestStatusDecodesPayload(t *testing.T) {
	path := startTestServer(t, func(conn net.Conn) {
		defer conn.Close()
		var req control.Request
		_ = json.NewDecoder(conn).Decode(&req)
		resp := control.Response{Status: control.StatusOK, Data: control.EngineStatus{
			Phase:  "running",
			Macros: []control.MacroStatus{{Index: 0, Action: "mouse left", ToggleHotkey: "F11", Fired: 4}},
		}}
		_ = json.NewEncoder(conn).Encode(resp)
	})

	c, _ := New(path)
	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Phase != "running" || len(status.Macros) != 1 || status.Macros[0].Fired != 4 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestServerErrorIsReturned(t *testing.T) {
	path := startTestServer(t, func(conn net.Conn) {
		defer conn.Close()
		var req control.Request
		_ = json.NewDecoder(conn).Decode(&req)
		_ = json.NewEncoder(conn).Encode(control.Response{Status: control.StatusError, Error: "invalid macro index: 9"})
	})

	c, _ := New(path)
	err := c.SetEnabled(context.Background(), 9, true)
	if err == nil || !strings.Contains(err.Error(), "invalid macro index") {
		t.Fatalf("SetEnabled() error = %v, want invalid macro index", err)
	}
}

func TestNegativeIndexRejectedLocally(t *testing.T) {
	c, _ := New(filepath.Join(t.TempDir(), "missing.sock"))
	if _, err := c.Toggle(context.Background(), -1); err == nil {
		t.Fatalf("expected error for negative index")
	}
}
