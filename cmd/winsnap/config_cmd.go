package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/winsnap/internal/config"
)

func loadConfigAt(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  winsnap config init [--path PATH] [--force]")
		fmt.Fprintln(os.Stderr, "  winsnap config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  winsnap config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  winsnap config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winsnap/config.yaml)")
		force := fs.Bool("force", false, "Overwrite an existing file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		written, err := initConfig(*path, *force)
		if err != nil {
			errorColor.Fprintln(os.Stderr, err)
			return 1
		}
		successColor.Printf("wrote default config to %s\n", written)
		return 0

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winsnap/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfigAt(*path)
		if err != nil {
			errorColor.Fprintln(os.Stderr, err)
			return 1
		}
		successColor.Printf("config: ok (%d file(s))\n", len(res.Files))
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winsnap/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigAt(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winsnap/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}

		res, err := loadConfigAt(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("%s: %s\n", fs.Arg(0), value)
		fmt.Printf("source: %s\n", formatSource(src))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

// initConfig writes the built-in defaults to path, or to the default location
// when path is empty. An existing file is kept unless force is set.
func initConfig(path string, force bool) (string, error) {
	target := path
	if target == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return "", err
		}
		target = p
	}
	if !force {
		if _, err := os.Stat(target); err == nil {
			return target, fmt.Errorf("%s already exists (use --force to overwrite)", target)
		}
	}

	cfg := config.DefaultConfig()
	if path == "" {
		return target, cfg.Save()
	}
	return target, cfg.SaveTo(target)
}

// explain returns the effective value at a dotted YAML path and where it
// came from.
func explain(res *config.LoadResult, path string) (string, config.Source, error) {
	cfg := res.Config
	var value string
	switch {
	case path == "log_level":
		value = cfg.LogLevel
	case path == "log_format":
		value = cfg.LogFormat
	case path == "display":
		value = cfg.Display
	case strings.HasPrefix(path, "keybindings."):
		seq, ok := cfg.Keybindings[strings.TrimPrefix(path, "keybindings.")]
		if !ok {
			return "", config.Source{}, fmt.Errorf("unknown config path %q", path)
		}
		value = seq
	default:
		return "", config.Source{}, fmt.Errorf("unknown config path %q", path)
	}
	if value == "" {
		value = `""`
	}

	src, ok := res.Sources[path]
	if !ok {
		src = config.Source{Kind: config.SourceDefault}
	}
	return value, src, nil
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}
