package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/1broseidon/winsnap/internal/dispatch"
	"github.com/1broseidon/winsnap/internal/ipc"
	"github.com/1broseidon/winsnap/internal/layout"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
)

func writeDisplaysTable(w io.Writer, displays []ipc.DisplayInfo) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Primary", "Bounds", "Work Area")
	for _, d := range displays {
		primary := ""
		if d.Primary {
			primary = "yes"
		}
		if err := table.Append(
			fmt.Sprintf("%d", d.ID),
			d.Name,
			primary,
			formatRect(d.Bounds),
			formatRect(d.WorkArea),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeLayouts(w io.Writer, layouts []ipc.LayoutInfo) {
	for _, l := range layouts {
		key := l.Key
		if key == "" {
			key = mutedColor.Sprint("(unbound)")
		}
		fmt.Fprintf(w, "%-16s %s\n", l.ID, key)
	}
}

func printPlaceResult(w io.Writer, data *ipc.PlaceData) {
	if data.Outcome == string(dispatch.OutcomeNoWindow) {
		mutedColor.Fprintln(w, "no focused window")
		return
	}
	successColor.Fprintf(w, "placed window 0x%x (%s) on display %d at %s\n",
		data.WindowID, data.Layout, data.DisplayID, formatRect(data.Bounds))
}

// formatRect renders r in X geometry notation: WxH+X+Y.
func formatRect(r ipc.Rect) string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Width, r.Height, r.X, r.Y)
}

func layoutNames() string {
	ids := layout.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
