package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/dispatch"
	"github.com/1broseidon/winsnap/internal/layout"
	"github.com/1broseidon/winsnap/internal/platform"
)

// Placer runs placements on behalf of IPC clients.
type Placer interface {
	Place(id layout.ID) (dispatch.Result, error)
	Applied() int64
}

// DisplaySource lists the current displays.
type DisplaySource interface {
	Displays() ([]platform.Display, error)
}

// ConfigLoader returns a freshly loaded config for RELOAD.
type ConfigLoader func() (*config.Config, error)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	load         ConfigLoader
	placer       Placer
	displays     DisplaySource
	boundKeys    func() int
	logger       *slog.Logger
	startTime    time.Time
	reloadChan   chan<- *config.Config
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// ServerOptions configures a Server.
type ServerOptions struct {
	SocketPath string
	Config     *config.Config
	Placer     Placer
	Displays   DisplaySource
	// Load defaults to config.Load.
	Load ConfigLoader
	// ReloadChan receives the new config after a successful RELOAD. Sends
	// never block.
	ReloadChan chan<- *config.Config
	// BoundKeys reports how many hotkeys are currently grabbed. Nil counts
	// the configured bindings instead.
	BoundKeys func() int
	Logger    *slog.Logger
}

// NewServer creates a new IPC server
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.SocketPath == "" {
		return nil, fmt.Errorf("IPC socket path is empty")
	}
	if opts.Placer == nil || opts.Displays == nil {
		return nil, fmt.Errorf("IPC server requires a placer and a display source")
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Load == nil {
		opts.Load = config.Load
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	// Remove existing socket if present
	os.Remove(opts.SocketPath)

	return &Server{
		socketPath: opts.SocketPath,
		cfg:        opts.Config,
		load:       opts.Load,
		placer:     opts.Placer,
		displays:   opts.Displays,
		boundKeys:  opts.BoundKeys,
		logger:     opts.Logger.With("component", "ipc"),
		startTime:  time.Now(),
		reloadChan: opts.ReloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.safeHandleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// safeHandleCommand turns a panic in a handler into an error response so one
// bad request cannot take the daemon down.
func (s *Server) safeHandleCommand(req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("IPC handler panicked", "command", req.Command, "panic", r)
			resp = NewErrorResponse(fmt.Sprintf("internal error: %v", r))
		}
	}()
	return s.handleCommand(req)
}

func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandPlace:
		return s.handlePlace(req.Payload)
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandListLayouts:
		return s.handleListLayouts()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handlePlace(payload json.RawMessage) *Response {
	var req PlacePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid place payload: %v", err))
	}
	if req.Layout == "" {
		return NewErrorResponse("layout is required")
	}
	id, ok := layout.ParseID(req.Layout)
	if !ok {
		return NewErrorResponse(fmt.Sprintf("Unknown layout: %s", req.Layout))
	}

	res, err := s.placer.Place(id)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to place window: %v", err))
	}

	resp, err := NewOKResponse(PlaceData{
		Outcome:   string(res.Outcome),
		Layout:    string(id),
		WindowID:  uint32(res.WindowID),
		DisplayID: res.DisplayID,
		Bounds:    rectFromGeom(res.Bounds),
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleGetDisplays() *Response {
	displays, err := s.displays.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}

	infos := make([]DisplayInfo, len(displays))
	for i, d := range displays {
		infos[i] = DisplayInfoFrom(d)
	}

	resp, _ := NewOKResponse(DisplaysData{Displays: infos})
	return resp
}

func (s *Server) handleListLayouts() *Response {
	bindings := s.Config().Bindings()

	ids := layout.IDs()
	infos := make([]LayoutInfo, len(ids))
	for i, id := range ids {
		infos[i] = LayoutInfo{ID: string(id), Key: bindings[id]}
	}

	resp, _ := NewOKResponse(LayoutsData{Layouts: infos})
	return resp
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		UptimeSeconds:     int64(time.Since(s.startTime).Seconds()),
		PlacementsApplied: s.placer.Applied(),
		BoundKeys:         s.boundKeyCount(),
		DaemonRunning:     true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) boundKeyCount() int {
	if s.boundKeys != nil {
		return s.boundKeys()
	}
	return len(s.Config().Bindings())
}

func (s *Server) handleReload() *Response {
	s.logger.Info("reloading config")

	newCfg, err := s.load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	if s.reloadChan != nil {
		select {
		case s.reloadChan <- newCfg:
		default:
		}
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// Config returns the current config (thread-safe)
func (s *Server) Config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig replaces the config served to clients (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
