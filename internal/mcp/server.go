package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsnap/internal/ipc"
	"github.com/1broseidon/winsnap/internal/layout"
)

const (
	ServerName    = "winsnap"
	ServerVersion = "0.1.0"
)

// DaemonClient is the subset of ipc.Client the tools forward to.
type DaemonClient interface {
	Place(layoutName string) (*ipc.PlaceData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	ListLayouts() (*ipc.LayoutsData, error)
}

// Server is the MCP server exposing window placement as tools.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    DaemonClient
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards to a running daemon.
func NewServer(daemon DaemonClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		daemon: daemon,
		logger: logger.With("component", "mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "place_window",
		Description: fmt.Sprintf("Move and resize the focused window into a layout on the display it mostly occupies. Maximized or fullscreen windows are restored first. Layouts: %s.", layoutList()),
	}, s.handlePlaceWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List connected displays with their full bounds and the work area left after panels and docks.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List the available layouts and the hotkey bound to each.",
	}, s.handleListLayouts)
}

func (s *Server) handlePlaceWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args PlaceWindowInput) (*mcpsdk.CallToolResult, PlaceWindowOutput, error) {
	name := strings.TrimSpace(args.Layout)
	if name == "" {
		return nil, PlaceWindowOutput{}, fmt.Errorf("layout is required")
	}
	if _, ok := layout.ParseID(name); !ok {
		return nil, PlaceWindowOutput{}, fmt.Errorf("unknown layout %q (available: %s)", name, layoutList())
	}

	data, err := s.daemon.Place(name)
	if err != nil {
		s.logger.Warn("place_window failed", "layout", name, "error", err)
		return nil, PlaceWindowOutput{}, fmt.Errorf("place_window: %w", err)
	}
	s.logger.Info("place_window", "layout", data.Layout, "outcome", data.Outcome)

	return nil, PlaceWindowOutput{
		Outcome:   data.Outcome,
		Layout:    data.Layout,
		WindowID:  data.WindowID,
		DisplayID: data.DisplayID,
		Bounds:    data.Bounds,
	}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	data, err := s.daemon.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("list_displays: %w", err)
	}
	displays := data.Displays
	if displays == nil {
		displays = []ipc.DisplayInfo{}
	}
	return nil, ListDisplaysOutput{Displays: displays}, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	data, err := s.daemon.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, fmt.Errorf("list_layouts: %w", err)
	}
	return nil, ListLayoutsOutput{Layouts: data.Layouts}, nil
}

func layoutList() string {
	ids := layout.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
