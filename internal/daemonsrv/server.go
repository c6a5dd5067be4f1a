// Package daemonsrv is terrainiumd's accept loop and per-connection
// dispatcher: the Daemon Server component of spec.md §4.5, grounded on
// the teacher's control.Server (internal/control/server.go) generalized
// from newline-delimited single-type requests to the four-kind,
// length-prefixed protocol in internal/ipc.
package daemonsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/terrainium/terrainium/internal/errs"
	"github.com/terrainium/terrainium/internal/executor"
	"github.com/terrainium/terrainium/internal/ipc"
	"github.com/terrainium/terrainium/internal/statestore"
	"github.com/terrainium/terrainium/internal/terrain"
)

// Server is the daemon's socket acceptor plus dispatcher over a Registry.
type Server struct {
	Root       string
	SocketPath string
	PidPath    string
	Force      bool

	Registry *statestore.Registry
	Log      *slog.Logger

	listener net.Listener
	sem      chan struct{}
}

// New constructs a Server rooted at root, with its socket/pid files at the
// conventional paths statestore.SocketPath/PidPath produce.
func New(root string, force bool, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		Root:       root,
		SocketPath: statestore.SocketPath(root),
		PidPath:    statestore.PidPath(root),
		Force:      force,
		Registry:   statestore.NewRegistry(root, 15*time.Minute, log),
		Log:        log,
		sem:        make(chan struct{}, 32),
	}
}

// Listen implements spec.md §4.5's startup contract: if the socket path
// already exists, check the pid file; a live process without --force
// refuses to start (S5), otherwise the stale socket is removed before
// binding and the pid file is overwritten with this process's pid.
func (s *Server) Listen() error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return errs.NewFatalError("creating state root %q: %v", s.Root, err)
	}

	if _, err := os.Stat(s.SocketPath); err == nil {
		if pid, alive := s.stalePidCheck(); alive && !s.Force {
			return errs.NewFatalError("terrainiumd is already running (pid %d)", pid)
		} else if alive && s.Force {
			s.Log.Info("force start: signalling stale daemon", "pid", pid)
			proc, findErr := os.FindProcess(pid)
			if findErr == nil {
				_ = proc.Signal(unix.SIGKILL) // tolerated to fail if already gone
			}
		}
		s.Log.Info("removing stale socket", "path", s.SocketPath)
		_ = os.Remove(s.SocketPath)
	}

	ln, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return errs.NewFatalError("binding socket %q: %v", s.SocketPath, err)
	}
	s.listener = ln

	if err := s.writePid(); err != nil {
		ln.Close()
		return errs.NewFatalError("writing pid file: %v", err)
	}

	return nil
}

// stalePidCheck reads the pid file and probes liveness with signal 0.
// Returns (0, false) if the pid file is absent or unparsable.
func (s *Server) stalePidCheck() (int, bool) {
	data, err := os.ReadFile(s.PidPath)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	return pid, proc.Signal(unix.Signal(0)) == nil
}

func (s *Server) writePid() error {
	if err := os.MkdirAll(filepath.Dir(s.PidPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.PidPath, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// Serve accepts connections until ctx is cancelled (SIGTERM), per spec.md
// §4.5's shutdown contract: the accept loop exits but in-flight hook tasks
// keep running to completion.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
		_ = os.Remove(s.SocketPath)
		_ = os.Remove(s.PidPath)
	}()

	s.Log.Info("daemon listening", "socket", s.SocketPath)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.Log.Error("accept error", "error", err)
				continue
			}
		}

		select {
		case s.sem <- struct{}{}:
			go func() {
				defer func() { <-s.sem }()
				s.handleConn(ctx, conn)
			}()
		default:
			s.Log.Warn("too many concurrent connections, rejecting")
			_ = conn.Close()
		}
	}
}

// handleConn reads exactly one request, dispatches it, writes exactly one
// response, then closes — per spec.md §4.5's per-connection contract.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	frame, err := ipc.ReadFrame(conn)
	if err != nil {
		s.Log.Warn("reading request frame", "error", err)
		return
	}

	var env ipc.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		writeResponse(conn, ipc.Response{Error: fmt.Sprintf("invalid envelope: %v", err)})
		return
	}
	if env.Version != 0 && env.Version != ipc.ProtocolVersion {
		s.Log.Warn("unknown protocol version, processing anyway", "version", env.Version)
	}

	resp := s.dispatch(ctx, env)
	writeResponse(conn, resp)
}

func writeResponse(conn net.Conn, resp ipc.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("marshaling response", "error", err)
		return
	}
	if err := ipc.WriteFrame(conn, data); err != nil {
		slog.Error("writing response frame", "error", err)
	}
}

func (s *Server) dispatch(ctx context.Context, env ipc.Envelope) ipc.Response {
	switch env.Kind {
	case ipc.KindActivate:
		return s.handleActivate(ctx, env.Payload)
	case ipc.KindExecute:
		return s.handleExecute(ctx, env.Payload)
	case ipc.KindDeactivate:
		return s.handleDeactivate(ctx, env.Payload)
	case ipc.KindStatus:
		return s.handleStatus(env.Payload)
	default:
		return ipc.Response{Error: fmt.Sprintf("unknown request kind: %q", env.Kind)}
	}
}

func (s *Server) handleActivate(ctx context.Context, payload json.RawMessage) ipc.Response {
	var req ipc.ActivateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ipc.Response{Error: fmt.Sprintf("invalid activate payload: %v", err)}
	}

	state := statestore.NewTerrainState(
		req.SessionID, req.TerrainName, req.BiomeName, req.TomlPath, req.TerrainDir,
		req.IsBackground, req.StartTimestamp, req.Envs,
	)
	s.Registry.Put(state)
	if err := statestore.WriteState(s.Root, state); err != nil {
		return ipc.Response{Error: fmt.Sprintf("persisting activation: %v", err)}
	}

	if err := statestore.PushHistory(s.Root, req.TerrainName, req.SessionID, statestore.DefaultHistorySize); err != nil {
		s.Log.Error("updating history", "error", err)
	}

	if len(req.Constructors) > 0 {
		go s.dispatchBatch(ctx, req.SessionID, req.TerrainName, req.Envs, true, req.StartTimestamp, req.Constructors)
	}

	s.Log.Info("session activated", "session_id", req.SessionID, "terrain", req.TerrainName)
	return ipc.Response{}
}

func (s *Server) handleExecute(ctx context.Context, payload json.RawMessage) ipc.Response {
	var req ipc.ExecuteRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ipc.Response{Error: fmt.Sprintf("invalid execute payload: %v", err)}
	}

	if req.SessionID == "" {
		return ipc.Response{Error: "execute request missing session_id"}
	}

	go s.dispatchBatch(ctx, req.SessionID, req.TerrainName, req.Envs, req.IsConstructor, req.Timestamp, req.Commands)

	s.Log.Info("batch dispatched", "session_id", req.SessionID, "is_constructor", req.IsConstructor, "commands", len(req.Commands))
	return ipc.Response{}
}

func (s *Server) dispatchBatch(ctx context.Context, sessionID, terrainName string, env map[string]string, isConstructor bool, timestamp string, commands []terrain.Command) {
	b := executor.Batch{
		SessionID:     sessionID,
		TerrainName:   terrainName,
		Timestamp:     timestamp,
		IsConstructor: isConstructor,
		Commands:      commands,
		Env:           env,
		Root:          s.Root,
	}
	if err := executor.Run(ctx, s.Registry, b, s.Log); err != nil {
		s.Log.Error("batch execution failed", "session_id", sessionID, "error", err)
	}
}

func (s *Server) handleDeactivate(ctx context.Context, payload json.RawMessage) ipc.Response {
	var req ipc.DeactivateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ipc.Response{Error: fmt.Sprintf("invalid deactivate payload: %v", err)}
	}

	err := s.Registry.WithLock(req.SessionID, req.TerrainName, func(st *statestore.TerrainState) error {
		st.SetEndTimestamp(req.EndTimestamp)
		return nil
	})
	if err != nil {
		return ipc.Response{Error: fmt.Sprintf("persisting deactivation: %v", err)}
	}

	if len(req.Destructors) > 0 {
		go s.dispatchBatch(ctx, req.SessionID, req.TerrainName, nil, false, req.EndTimestamp, req.Destructors)
	}

	s.Log.Info("session deactivated", "session_id", req.SessionID, "terrain", req.TerrainName)
	return ipc.Response{}
}

func (s *Server) handleStatus(payload json.RawMessage) ipc.Response {
	var req ipc.StatusRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ipc.Response{Error: fmt.Sprintf("invalid status payload: %v", err)}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		index := 0
		if req.Recent != nil {
			index = *req.Recent
		}
		id, err := statestore.SessionIDAtIndex(s.Root, req.TerrainName, index)
		if err != nil {
			return ipc.Response{Error: err.Error()}
		}
		sessionID = id
	}

	state, err := statestore.ReadState(s.Root, req.TerrainName, sessionID)
	if err != nil {
		return ipc.Response{Error: fmt.Sprintf("reading state: %v", err)}
	}

	body, err := json.Marshal(state)
	if err != nil {
		return ipc.Response{Error: fmt.Sprintf("marshaling state: %v", err)}
	}
	return ipc.Response{Body: body}
}
