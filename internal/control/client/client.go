package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/loonghao/poe2-macro-buddy/internal/control"
)

// defaultTimeout is used when the caller does not provide a context deadline.
const defaultTimeout = 3 * time.Second

// Client talks to a running macrobuddy over its control socket.
type Client struct {
	socketPath string
}

type (
	EngineStatus = control.EngineStatus
	MacroStatus  = control.MacroStatus
	ToggleResult = control.ToggleResult
)

// New creates a client for the socket at path, or the default runtime path
// when path is empty.
func New(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = control.DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Client{socketPath: path}, nil
}

func (c *Client) Status(ctx context.Context) (EngineStatus, error) {
	var status EngineStatus
	if err := c.do(ctx, control.Request{Action: control.ActionStatus}, &status); err != nil {
		return EngineStatus{}, err
	}
	return status, nil
}

// Toggle flips one macro and returns its new state.
func (c *Client) Toggle(ctx context.Context, index int) (bool, error) {
	if index < 0 {
		return false, errors.New("macro index cannot be negative")
	}
	var result ToggleResult
	req := control.Request{Action: control.ActionToggle, Params: map[string]any{"index": index}}
	if err := c.do(ctx, req, &result); err != nil {
		return false, err
	}
	return result.Enabled, nil
}

func (c *Client) SetEnabled(ctx context.Context, index int, enabled bool) error {
	if index < 0 {
		return errors.New("macro index cannot be negative")
	}
	req := control.Request{Action: control.ActionSet, Params: map[string]any{"index": index, "enabled": enabled}}
	return c.do(ctx, req, nil)
}

func (c *Client) Start(ctx context.Context) (EngineStatus, error) {
	var status EngineStatus
	if err := c.do(ctx, control.Request{Action: control.ActionStart}, &status); err != nil {
		return EngineStatus{}, err
	}
	return status, nil
}

func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionStop}, nil)
}

// Reload asks the daemon to re-read its configuration and restart.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionReload}, nil)
}

func (c *Client) do(ctx context.Context, req control.Request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	var resp control.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != control.StatusOK {
		if resp.Error == "" {
			resp.Error = "unknown control error"
		}
		return errors.New(resp.Error)
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
