// Package project reads paraflow.toml, the per-directory defaults for the
// paraflow CLI.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"paraflow/internal/diag"
	"paraflow/internal/source"
	"paraflow/internal/trace"
)

// Manifest is a loaded paraflow.toml together with where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Check CheckConfig `toml:"check"`
	Trace TraceConfig `toml:"trace"`
}

type CheckConfig struct {
	// Inputs are tree dumps or directories checked when the CLI gets none.
	Inputs    []string `toml:"inputs"`
	Jobs      int      `toml:"jobs"`
	Format    string   `toml:"format"`
	DiskCache bool     `toml:"disk_cache"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Diagnostic output formats.
const (
	FormatPretty = "pretty"
	FormatShort  = "short"
	FormatJSON   = "json"
)

// Default is the configuration used when no paraflow.toml exists.
func Default() Config {
	return Config{
		Check: CheckConfig{Format: FormatPretty},
		Trace: TraceConfig{Level: "off", Mode: "stream"},
	}
}

// JobLimit resolves Jobs == 0 to GOMAXPROCS.
func (c CheckConfig) JobLimit() int {
	if c.Jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Jobs
}

// Load finds paraflow.toml above startDir. ok is false when there is none;
// the returned manifest then carries Default().
func Load(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: Default()}, false, nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes and validates one paraflow.toml. Errors are
// PrjConfigInvalid diagnostics located in the file.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	at := source.Token{Pos: source.Pos{File: path}}
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			at.Pos.Line = uint32(max(perr.Position.Line, 0)) // #nosec G115 -- line numbers are small
			return Config{}, diag.Errorf(diag.PrjConfigInvalid, at, "failed to parse TOML: %s", perr.Message)
		}
		return Config{}, diag.Errorf(diag.PrjConfigInvalid, at, "failed to parse TOML: %v", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, diag.Errorf(diag.PrjConfigInvalid, at, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, diag.Errorf(diag.PrjConfigInvalid, at, "%v", err)
	}
	if meta.IsDefined("check", "inputs") {
		base := filepath.Dir(path)
		for i, in := range cfg.Check.Inputs {
			if !filepath.IsAbs(in) {
				cfg.Check.Inputs[i] = filepath.Join(base, filepath.FromSlash(in))
			}
		}
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must be >= 0, got %d", c.Check.Jobs)
	}
	switch c.Check.Format {
	case FormatPretty, FormatShort, FormatJSON:
	default:
		return fmt.Errorf("[check].format must be pretty|short|json, got %q", c.Check.Format)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	return nil
}
