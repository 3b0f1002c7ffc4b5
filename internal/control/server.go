package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

// Engine is the part of the macro engine the control server drives.
type Engine interface {
	Phase() macro.Phase
	RunID() string
	Status() []macro.Status
	ToggleMacro(index int) (bool, error)
	SetMacroEnabled(index int, enabled bool) error
}

// Hooks are the lifecycle operations owned by the host process, which knows
// where the macro definitions come from. A nil hook makes its action
// unsupported.
type Hooks struct {
	Start  func() error
	Stop   func()
	Reload func(reason string) error
}

// Server hosts the control socket and serves requests.
type Server struct {
	engine     Engine
	logger     macro.Logger
	hooks      Hooks
	socketPath string

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a control server. An empty socketPath selects
// DefaultSocketPath.
func NewServer(eng Engine, logger macro.Logger, hooks Hooks, socketPath string) (*Server, error) {
	if eng == nil {
		return nil, errors.New("engine is nil")
	}
	if socketPath == "" {
		path, err := DefaultSocketPath()
		if err != nil {
			return nil, err
		}
		socketPath = path
	}
	return &Server{
		engine:     eng,
		logger:     logger,
		hooks:      hooks,
		socketPath: socketPath,
	}, nil
}

func (s *Server) SocketPath() string {
	return s.socketPath
}

// Serve listens on the control socket until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.prepareSocket(); err != nil {
		return err
	}
	s.logger.Info("Control server listening", "socket", s.socketPath)
	defer s.cleanup()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := s.accept(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			s.logger.Error("Control accept failed", "err", err)
			continue
		}
		go s.handle(conn)
	}
}

func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil, context.Canceled
	}
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

func (s *Server) prepareSocket() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return fmt.Errorf("create control dir: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("chmod control socket: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *Server) cleanup() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()
	if listener != nil {
		listener.Close()
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Remove control socket failed", "err", err)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.writeError(conn, fmt.Errorf("decode request: %w", err))
		return
	}
	s.logger.Debug("Control request", "action", req.Action)

	switch req.Action {
	case ActionStatus:
		s.writeOK(conn, s.snapshot())
	case ActionToggle:
		s.handleToggle(conn, req.Params)
	case ActionSet:
		s.handleSet(conn, req.Params)
	case ActionStart:
		s.handleStart(conn)
	case ActionStop:
		s.handleStop(conn)
	case ActionReload:
		s.handleReload(conn)
	default:
		s.writeError(conn, fmt.Errorf("unknown action %q", req.Action))
	}
}

func (s *Server) snapshot() EngineStatus {
	statuses := s.engine.Status()
	out := EngineStatus{
		Phase:  s.engine.Phase().String(),
		RunID:  s.engine.RunID(),
		Macros: make([]MacroStatus, 0, len(statuses)),
	}
	for _, st := range statuses {
		out.Macros = append(out.Macros, macroStatusFrom(st))
	}
	return out
}

func (s *Server) handleToggle(conn net.Conn, params map[string]any) {
	index, err := indexParam(params)
	if err != nil {
		s.writeError(conn, err)
		return
	}
	enabled, err := s.engine.ToggleMacro(index)
	if err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, ToggleResult{Index: index, Enabled: enabled})
}

func (s *Server) handleSet(conn net.Conn, params map[string]any) {
	index, err := indexParam(params)
	if err != nil {
		s.writeError(conn, err)
		return
	}
	enabled, ok := params["enabled"].(bool)
	if !ok {
		s.writeError(conn, errors.New("missing enabled flag"))
		return
	}
	if err := s.engine.SetMacroEnabled(index, enabled); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, ToggleResult{Index: index, Enabled: enabled})
}

func (s *Server) handleStart(conn net.Conn) {
	if s.hooks.Start == nil {
		s.writeError(conn, errors.New("start not supported"))
		return
	}
	if err := s.hooks.Start(); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, s.snapshot())
}

func (s *Server) handleStop(conn net.Conn) {
	if s.hooks.Stop == nil {
		s.writeError(conn, errors.New("stop not supported"))
		return
	}
	s.hooks.Stop()
	s.writeOK(conn, nil)
}

func (s *Server) handleReload(conn net.Conn) {
	if s.hooks.Reload == nil {
		s.writeError(conn, errors.New("reload not supported"))
		return
	}
	if err := s.hooks.Reload("control request"); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, nil)
}

// indexParam reads the macro index. JSON numbers arrive as float64.
func indexParam(params map[string]any) (int, error) {
	raw, ok := params["index"]
	if !ok {
		return 0, errors.New("missing macro index")
	}
	value, ok := raw.(float64)
	if !ok || value != math.Trunc(value) {
		return 0, fmt.Errorf("macro index must be an integer, got %v", raw)
	}
	return int(value), nil
}

func (s *Server) writeOK(conn net.Conn, data any) {
	resp := Response{Status: StatusOK}
	if data != nil {
		resp.Data = data
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

func (s *Server) writeError(conn net.Conn, err error) {
	resp := Response{Status: StatusError}
	if err != nil {
		resp.Error = err.Error()
	}
	_ = json.NewEncoder(conn).Encode(resp)
}
