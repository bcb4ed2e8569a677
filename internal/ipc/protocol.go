package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winsnap/internal/geom"
	"github.com/1broseidon/winsnap/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPlace       CommandType = "PLACE"
	CommandGetDisplays CommandType = "GET_DISPLAYS"
	CommandListLayouts CommandType = "LIST_LAYOUTS"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandReload      CommandType = "RELOAD"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// PlacePayload is the payload for PLACE.
type PlacePayload struct {
	Layout string `json:"layout"`
}

// Rect is the wire form of geom.Rect.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func rectFromGeom(r geom.Rect) Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Geom converts r back to geom.Rect.
func (r Rect) Geom() geom.Rect {
	return geom.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// PlaceData is returned by PLACE.
type PlaceData struct {
	Outcome   string `json:"outcome"`
	Layout    string `json:"layout"`
	WindowID  uint32 `json:"window_id,omitempty"`
	DisplayID int    `json:"display_id"`
	Bounds    Rect   `json:"bounds"`
}

// DisplayInfo represents information about a single display
type DisplayInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Primary  bool   `json:"primary"`
	Bounds   Rect   `json:"bounds"`
	WorkArea Rect   `json:"work_area"`
}

// DisplayInfoFrom converts a platform display into its wire form.
func DisplayInfoFrom(d platform.Display) DisplayInfo {
	return DisplayInfo{
		ID:       d.ID,
		Name:     d.Name,
		Primary:  d.Primary,
		Bounds:   rectFromGeom(d.Bounds),
		WorkArea: rectFromGeom(d.WorkArea),
	}
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
}

// LayoutInfo describes one layout and the hotkey bound to it, if any.
type LayoutInfo struct {
	ID  string `json:"id"`
	Key string `json:"key,omitempty"`
}

type LayoutsData struct {
	Layouts []LayoutInfo `json:"layouts"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds     int64 `json:"uptime_seconds"`
	PlacementsApplied int64 `json:"placements_applied"`
	BoundKeys         int   `json:"bound_keys"`
	DaemonRunning     bool  `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
