package mcp

import "github.com/1broseidon/winsnap/internal/ipc"

// PlaceWindowInput is the input for the place_window tool.
type PlaceWindowInput struct {
	Layout string `json:"layout" jsonschema:"Layout id: center, center-75, top-left-50, top-right-50, bottom-left-50 or bottom-right-50"`
}

// PlaceWindowOutput is the output for the place_window tool.
type PlaceWindowOutput struct {
	Outcome   string   `json:"outcome" jsonschema:"applied, or no-window when nothing was focused"`
	Layout    string   `json:"layout"`
	WindowID  uint32   `json:"window_id,omitempty"`
	DisplayID int      `json:"display_id"`
	Bounds    ipc.Rect `json:"bounds" jsonschema:"Final window bounds in root-window pixels"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []ipc.DisplayInfo `json:"displays"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []ipc.LayoutInfo `json:"layouts"`
}
