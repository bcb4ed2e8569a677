package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source records where a config value was last set.
type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

// LoadResult is an effective config plus where each value came from.
type LoadResult struct {
	Config *Config
	// Sources maps a dotted path such as "keybindings.center" to the file
	// position that set it. Defaults have no entry.
	Sources map[string]Source
	// Files lists every file applied, lowest precedence first.
	Files []string
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winsnap", "config.yaml"), nil
}

// Load reads the config at DefaultConfigPath.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load with per-value sources for `config explain`.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	res := &LoadResult{Sources: make(map[string]Source)}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Config = DefaultConfig()
	case err != nil:
		return nil, err
	default:
		l := &loader{visited: make(map[string]bool)}
		if err := l.visit(path); err != nil {
			return nil, err
		}
		var raw RawConfig
		for _, ly := range l.layers {
			raw = raw.merge(ly.raw)
			ly.recordSources(res.Sources)
			res.Files = append(res.Files, ly.file)
		}
		res.Config = BuildEffectiveConfig(raw)
	}

	if err := res.Config.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			if src, ok := res.Sources[verr.Path]; ok {
				verr.Source = src
			}
		}
		return nil, err
	}
	return res, nil
}

// layer is one parsed file.
type layer struct {
	file string
	raw  RawConfig
	// root is the top-level mapping, used only for positions.
	root *yaml.Node
}

// loader walks a file and its includes depth first. A file's includes are
// layered beneath it, in the order they are listed.
type loader struct {
	chain   []string
	visited map[string]bool
	layers  []layer
}

func (l *loader) visit(path string) error {
	file, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(file); err == nil {
		file = real
	}
	if slices.Contains(l.chain, file) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), file)
	}
	if l.visited[file] {
		return nil
	}
	l.visited[file] = true

	ly, err := parseLayer(file)
	if err != nil {
		return err
	}
	refs, err := includeRefs(file, &ly.raw.Include)
	if err != nil {
		return err
	}

	l.chain = append(l.chain, file)
	for _, ref := range refs {
		paths, err := resolveInclude(file, ref.pattern)
		if err != nil {
			return fmt.Errorf("%s:%d:%d: include %q: %w", file, ref.line, ref.column, ref.pattern, err)
		}
		for _, p := range paths {
			if err := l.visit(p); err != nil {
				return err
			}
		}
	}
	l.chain = l.chain[:len(l.chain)-1]

	l.layers = append(l.layers, ly)
	return nil
}

func parseLayer(file string) (layer, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return layer{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}

	ly := layer{file: file}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ly.raw); err != nil && !errors.Is(err, io.EOF) {
		return layer{}, fmt.Errorf("%s: %w", file, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return layer{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		ly.root = doc.Content[0]
	}
	return ly, nil
}

// recordSources notes the position of each top-level key and keybinding
// entry set by ly, overwriting lower layers.
func (ly layer) recordSources(out map[string]Source) {
	eachPair(ly.root, func(key, val *yaml.Node) {
		if key.Value == "include" {
			return
		}
		out[key.Value] = ly.sourceOf(val)
		if key.Value == "keybindings" {
			eachPair(val, func(k, v *yaml.Node) {
				out["keybindings."+k.Value] = ly.sourceOf(v)
			})
		}
	})
}

func (ly layer) sourceOf(node *yaml.Node) Source {
	return Source{Kind: SourceFile, File: ly.file, Line: node.Line, Column: node.Column}
}

func eachPair(node *yaml.Node, fn func(key, val *yaml.Node)) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		fn(node.Content[i], node.Content[i+1])
	}
}

type includeRef struct {
	pattern      string
	line, column int
}

// includeRefs accepts a single string or a list of strings.
func includeRefs(file string, node *yaml.Node) ([]includeRef, error) {
	var items []*yaml.Node
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		items = []*yaml.Node{node}
	case yaml.SequenceNode:
		items = node.Content
	default:
		return nil, fmt.Errorf("%s:%d:%d: include must be a string or list of strings", file, node.Line, node.Column)
	}

	refs := make([]includeRef, 0, len(items))
	for _, item := range items {
		if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
			return nil, fmt.Errorf("%s:%d:%d: include entries must be strings", file, item.Line, item.Column)
		}
		refs = append(refs, includeRef{pattern: item.Value, line: item.Line, column: item.Column})
	}
	return refs, nil
}

// resolveInclude expands pattern relative to the including file. A glob that
// matches nothing is not an error; a missing plain path is. Directories
// contribute their *.yaml and *.yml files in name order.
func resolveInclude(from, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, fmt.Errorf("path is empty")
	}
	if pattern == "~" || strings.HasPrefix(pattern, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		pattern = filepath.Join(home, strings.TrimPrefix(pattern[1:], "/"))
	}
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(filepath.Dir(from), pattern)
	}

	if strings.ContainsAny(pattern, "*?[") {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		files := matches[:0]
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				files = append(files, m)
			}
		}
		return files, nil
	}

	info, err := os.Stat(pattern)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{pattern}, nil
	}

	entries, err := os.ReadDir(pattern)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(pattern, ent.Name()))
			}
		}
	}
	return files, nil
}
