// Package config loads the TOML settings shared by the geodraw command
// and its HTTP service.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/geodraw"
	"github.com/gogpu/geodraw/diagram"
	"github.com/gogpu/geodraw/solver"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "~/.config/geodraw/config.toml"

// Backend names accepted in [solver].backend.
const (
	BackendSMT     = "smt"
	BackendNumeric = "numeric"
)

// ErrConfig is wrapped by every error about the contents of a config file.
var ErrConfig = errors.New("config: invalid configuration")

// Config is the decoded configuration file.
type Config struct {
	Solver Solver `toml:"solver"`
	Render Render `toml:"render"`
	Server Server `toml:"server"`
}

// Solver selects and tunes the constraint solver.
type Solver struct {
	Backend    string `toml:"backend"`
	Command    string `toml:"command"`
	MinVersion string `toml:"min_version"`
	Timeout    string `toml:"timeout"`
	Restarts   int    `toml:"restarts"`
	Seed       uint64 `toml:"seed"`
}

// Render holds drawing parameters; zero values keep the diagram defaults.
type Render struct {
	Padding         float64 `toml:"padding"`
	FontSize        float64 `toml:"font_size"`
	FontFamily      string  `toml:"font_family"`
	LabelOffset     float64 `toml:"label_offset"`
	MarkerRadius    float64 `toml:"marker_radius"`
	StrokeWidth     float64 `toml:"stroke_width"`
	Ink             string  `toml:"ink"`
	Background      string  `toml:"background"`
	VerifyTolerance float64 `toml:"verify_tolerance"`
}

// Server configures `geodraw serve`.
type Server struct {
	Addr        string `toml:"addr"`
	BodyLimit   int    `toml:"body_limit"`
	ReadTimeout string `toml:"read_timeout"`
	CacheSize   int    `toml:"cache_size"` // rendered documents kept; 0 disables
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Solver: Solver{
			Backend: BackendSMT,
			Command: solver.DefaultSMTCommand,
		},
		Server: Server{
			Addr:        ":8080",
			BodyLimit:   1 << 20,
			ReadTimeout: "10s",
			CacheSize:   128,
		},
	}
}

// Load reads the file at path over Default. An empty path means
// DefaultPath, which may be absent; an explicit path must exist. A
// leading ~ is expanded to the home directory.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	full, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	f, err := os.Open(full)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", full, err)
	}
	geodraw.Logger().Debug("config: loaded", "path", full, "backend", cfg.Solver.Backend)
	return cfg, nil
}

// Decode reads TOML from r over Default and validates it. Unknown keys
// are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfig, strict.String())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that decoding cannot.
func (c Config) Validate() error {
	switch c.Solver.Backend {
	case BackendSMT, BackendNumeric:
	default:
		return fmt.Errorf("%w: solver.backend %q is not %q or %q", ErrConfig, c.Solver.Backend, BackendSMT, BackendNumeric)
	}
	if c.Server.CacheSize < 0 {
		return fmt.Errorf("%w: server.cache_size must not be negative", ErrConfig)
	}
	if c.Solver.Restarts < 0 {
		return fmt.Errorf("%w: solver.restarts must not be negative", ErrConfig)
	}
	for _, d := range []struct{ key, val string }{
		{"solver.timeout", c.Solver.Timeout},
		{"server.read_timeout", c.Server.ReadTimeout},
	} {
		if d.val == "" {
			continue
		}
		if v, err := time.ParseDuration(d.val); err != nil || v < 0 {
			return fmt.Errorf("%w: %s %q is not a duration", ErrConfig, d.key, d.val)
		}
	}
	for _, p := range []struct {
		key string
		val geodraw.Paint
	}{
		{"render.ink", geodraw.Paint(c.Render.Ink)},
		{"render.background", geodraw.Paint(c.Render.Background)},
	} {
		if p.val == "" {
			continue
		}
		if err := p.val.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfig, p.key, err)
		}
	}
	return nil
}

// WithBackend returns c with the solver backend replaced, as done by the
// -backend flag.
func (c Config) WithBackend(name string) (Config, error) {
	c.Solver.Backend = name
	return c, c.Validate()
}

// SolverTimeout is the per-render solver deadline, zero for none.
func (c Config) SolverTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Solver.Timeout)
	return d
}

// ReadTimeout is the server's request read deadline.
func (c Config) ReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// Backend builds the configured solver backend.
func (c Config) Backend() (solver.Backend, error) {
	switch c.Solver.Backend {
	case BackendNumeric:
		var opts []solver.NumericOption
		if c.Solver.Restarts > 0 {
			opts = append(opts, solver.WithRestarts(c.Solver.Restarts))
		}
		if c.Solver.Seed != 0 {
			opts = append(opts, solver.WithSeed(c.Solver.Seed))
		}
		return solver.NewNumericBackend(opts...), nil
	case BackendSMT:
		var opts []solver.SMTOption
		if c.Solver.Command != "" {
			opts = append(opts, solver.WithCommand(c.Solver.Command))
		}
		if c.Solver.MinVersion != "" {
			opts = append(opts, solver.WithMinVersion(c.Solver.MinVersion))
		}
		return solver.NewSMTBackend(opts...)
	}
	return nil, fmt.Errorf("%w: solver.backend %q", ErrConfig, c.Solver.Backend)
}

// DiagramOptions converts the render and solver sections into options
// for diagram.Generate.
func (c Config) DiagramOptions() ([]diagram.Option, error) {
	b, err := c.Backend()
	if err != nil {
		return nil, err
	}
	opts := []diagram.Option{diagram.WithBackend(b)}
	r := c.Render
	if r.Padding > 0 {
		opts = append(opts, diagram.WithPadding(r.Padding))
	}
	if r.FontSize > 0 {
		opts = append(opts, diagram.WithFontSize(r.FontSize))
	}
	if r.FontFamily != "" {
		opts = append(opts, diagram.WithFontFamily(r.FontFamily))
	}
	if r.LabelOffset > 0 {
		opts = append(opts, diagram.WithLabelOffset(r.LabelOffset))
	}
	if r.MarkerRadius > 0 {
		opts = append(opts, diagram.WithMarkerRadius(r.MarkerRadius))
	}
	if r.StrokeWidth > 0 {
		opts = append(opts, diagram.WithStrokeWidth(r.StrokeWidth))
	}
	if r.Ink != "" {
		opts = append(opts, diagram.WithInk(geodraw.Paint(r.Ink)))
	}
	if r.Background != "" {
		opts = append(opts, diagram.WithBackground(geodraw.Paint(r.Background)))
	}
	if r.VerifyTolerance > 0 {
		opts = append(opts, diagram.WithVerifyTolerance(r.VerifyTolerance))
	}
	return opts, nil
}
