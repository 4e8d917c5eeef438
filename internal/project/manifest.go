package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults applied when the manifest leaves a key out.
const (
	DefaultTarget   = "es2019"
	DefaultMaxDepth = 4096
	DefaultOutDir   = "dist"
	DefaultHelpers  = "inline"
)

var (
	// ErrProjectSectionMissing indicates that [project] is missing.
	ErrProjectSectionMissing = errors.New("missing [project]")
	// ErrProjectNameMissing indicates that [project].name is missing or blank.
	ErrProjectNameMissing = errors.New("missing [project].name")
)

// Config mirrors downlevel.toml.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Lower   LowerConfig   `toml:"lower"`
	Emit    EmitConfig    `toml:"emit"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
}

type LowerConfig struct {
	Target   string `toml:"target"`
	MaxDepth int    `toml:"max_depth"`
}

type EmitConfig struct {
	OutDir  string `toml:"out_dir"`
	Helpers string `toml:"helpers"`
}

// Manifest is a loaded downlevel.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// OutDir resolves [emit].out_dir against the project root.
func (m *Manifest) OutDir() string {
	if filepath.IsAbs(m.Config.Emit.OutDir) {
		return m.Config.Emit.OutDir
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Emit.OutDir))
}

// LoadManifest finds downlevel.toml above startDir and loads it. ok is false
// when there is no manifest.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig parses path and fills in defaults for keys it does not define.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrProjectSectionMissing)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrProjectNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if !meta.IsDefined("lower", "target") {
		cfg.Lower.Target = DefaultTarget
	}
	if !meta.IsDefined("lower", "max_depth") {
		cfg.Lower.MaxDepth = DefaultMaxDepth
	} else if cfg.Lower.MaxDepth <= 0 {
		return Config{}, fmt.Errorf("%s: [lower].max_depth must be positive, got %d", path, cfg.Lower.MaxDepth)
	}
	if !meta.IsDefined("emit", "out_dir") || strings.TrimSpace(cfg.Emit.OutDir) == "" {
		cfg.Emit.OutDir = DefaultOutDir
	}
	if !meta.IsDefined("emit", "helpers") {
		cfg.Emit.Helpers = DefaultHelpers
	}
	return cfg, nil
}

// DefaultManifest is the text `downlevel init` writes.
func DefaultManifest(name string) string {
	return fmt.Sprintf(`# downlevel project manifest
[project]
name = %q

[lower]
target = %q
max_depth = %d

[emit]
out_dir = %q
helpers = %q   # inline | none
`, name, DefaultTarget, DefaultMaxDepth, DefaultOutDir, DefaultHelpers)
}
