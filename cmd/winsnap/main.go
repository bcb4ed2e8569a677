package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/dispatch"
	"github.com/1broseidon/winsnap/internal/ipc"
	"github.com/1broseidon/winsnap/internal/layout"
	"github.com/1broseidon/winsnap/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: winsnap daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: winsnap daemon")
			os.Exit(2)
		}
		os.Exit(runDaemon())
	case "place":
		os.Exit(runPlace(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "layouts":
		os.Exit(runLayouts(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winsnap <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the winsnap daemon (foreground)")
	fmt.Fprintln(w, "  place <layout>      Place the focused window")
	fmt.Fprintln(w, "  displays            List displays and work areas")
	fmt.Fprintln(w, "  layouts             List layouts and their hotkeys")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write the default configuration")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winsnap <command> --help' for command-specific options.")
}

func runPlace(args []string) int {
	fs := flag.NewFlagSet("place", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	direct := fs.Bool("direct", false, "Open a one-shot X connection instead of asking the daemon")
	jsonOut := fs.Bool("json", false, "Print the result as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap place [--direct] [--json] <layout>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Layouts: %s\n", layoutNames())
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "place requires exactly one <layout>")
		fs.Usage()
		return 2
	}
	name := fs.Arg(0)
	id, ok := layout.ParseID(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown layout %q (available: %s)\n", name, layoutNames())
		return 2
	}

	var data *ipc.PlaceData
	var err error
	if *direct {
		data, err = placeDirect(id)
	} else {
		data, err = ipc.NewClient().Place(string(id))
	}
	if err != nil {
		errorColor.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		return writeJSON(os.Stdout, data)
	}
	printPlaceResult(os.Stdout, data)
	return 0
}

// placeDirect runs one placement on a private X connection.
func placeDirect(id layout.ID) (*ipc.PlaceData, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		return nil, err
	}
	defer backend.Disconnect()

	logger := newLogger(os.Stderr, cfg.LogFormat, cfg.SlogLevel())
	res, err := dispatch.New(backend, logger).Place(id)
	if err != nil {
		return nil, err
	}
	return placeDataFromResult(res), nil
}

func placeDataFromResult(res dispatch.Result) *ipc.PlaceData {
	return &ipc.PlaceData{
		Outcome:   string(res.Outcome),
		Layout:    string(res.Layout),
		WindowID:  uint32(res.WindowID),
		DisplayID: res.DisplayID,
		Bounds: ipc.Rect{
			X:      res.Bounds.X,
			Y:      res.Bounds.Y,
			Width:  res.Bounds.Width,
			Height: res.Bounds.Height,
		},
	}
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	direct := fs.Bool("direct", false, "Query X directly instead of asking the daemon")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap displays [--json] [--direct]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "displays takes no arguments")
		fs.Usage()
		return 2
	}

	var displays []ipc.DisplayInfo
	if *direct {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer backend.Disconnect()
		list, err := backend.Displays()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, d := range list {
			displays = append(displays, ipc.DisplayInfoFrom(d))
		}
	} else {
		data, err := ipc.NewClient().GetDisplays()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		displays = data.Displays
	}

	if *jsonOut || !term.IsTerminal(int(os.Stdout.Fd())) {
		return writeJSON(os.Stdout, ipc.DisplaysData{Displays: displays})
	}
	if err := writeDisplaysTable(os.Stdout, displays); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runLayouts(args []string) int {
	fs := flag.NewFlagSet("layouts", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap layouts [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List layouts with their hotkeys. Falls back to the local config")
		fmt.Fprintln(os.Stderr, "when the daemon is not running.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "layouts takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().ListLayouts()
	if err != nil {
		cfg, cfgErr := config.Load()
		if cfgErr != nil {
			fmt.Fprintln(os.Stderr, cfgErr)
			return 1
		}
		data = layoutsFromConfig(cfg)
	}

	if *jsonOut {
		return writeJSON(os.Stdout, data)
	}
	writeLayouts(os.Stdout, data.Layouts)
	return 0
}

func layoutsFromConfig(cfg *config.Config) *ipc.LayoutsData {
	bindings := cfg.Bindings()
	ids := layout.IDs()
	out := &ipc.LayoutsData{Layouts: make([]ipc.LayoutInfo, len(ids))}
	for i, id := range ids {
		out.Layouts[i] = ipc.LayoutInfo{ID: string(id), Key: bindings[id]}
	}
	return out
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:     %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:     %d\n", status.UptimeSeconds)
	fmt.Printf("placements_applied: %d\n", status.PlacementsApplied)
	fmt.Printf("bound_keys:         %d\n", status.BoundKeys)
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reload the daemon config and re-grab hotkeys.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().Reload(); err != nil {
		errorColor.Fprintln(os.Stderr, err)
		return 1
	}
	successColor.Println("config reloaded")
	return 0
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// newLogger builds the slog logger for format ("text" or "json").
func newLogger(w io.Writer, format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
