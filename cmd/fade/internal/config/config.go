// Package config loads the optional fade.yaml file and resolves it
// against a preset into a [visibility.Config].
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/fade/pkg/animation"
	"github.com/go-drift/fade/pkg/filmstrip"
	"github.com/go-drift/fade/pkg/visibility"
)

// FileName is the default configuration file name.
const FileName = "fade.yaml"

// SchemaVersion is the newest fade.yaml schema this build understands.
// Files declaring the same major version are accepted.
const SchemaVersion = "v1.0.0"

// maxMS is the largest *_ms value that still fits in a time.Duration.
const maxMS = math.MaxInt64 / int64(time.Millisecond)

// Preset names a built-in configuration.
type Preset string

const (
	PresetSplash  Preset = "splash"
	PresetOverlay Preset = "overlay"
)

// Config represents the optional fade.yaml configuration. Absent fields
// fall back to the preset.
type Config struct {
	Version       string       `yaml:"version,omitempty"`
	Preset        string       `yaml:"preset,omitempty"`
	EnterMS       *int         `yaml:"enter_ms,omitempty"`
	ExitMS        *int         `yaml:"exit_ms,omitempty"`
	LoopMS        *int         `yaml:"loop_ms,omitempty"`
	AutoAdvanceMS *int         `yaml:"auto_advance_ms,omitempty"`
	AutoHide      *bool        `yaml:"auto_hide,omitempty"`
	EnterCurve    string       `yaml:"enter_curve,omitempty"`
	ExitCurve     string       `yaml:"exit_curve,omitempty"`
	Render        RenderConfig `yaml:"render,omitempty"`
}

// RenderConfig contains filmstrip settings.
type RenderConfig struct {
	Frames     int    `yaml:"frames,omitempty"`
	Size       int    `yaml:"size,omitempty"`
	Background string `yaml:"background,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	// Path is the file the values came from, empty for pure defaults.
	Path   string
	Preset Preset

	Enter time.Duration
	Exit  time.Duration
	Loop  time.Duration
	// AutoAdvance is the dwell; zero with HasAutoAdvance false disables it.
	AutoAdvance    time.Duration
	HasAutoAdvance bool
	AutoHide       bool

	EnterCurveName string
	ExitCurveName  string

	Frames     int
	Size       int
	Background filmstrip.Color
	Foreground filmstrip.Color
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional reads the configuration file at path if present.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Parse decodes fade.yaml content. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document decodes to the zero Config.
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Resolve loads path (if present) and resolves it against its preset.
// A non-empty preset overrides the file's.
func Resolve(path, preset string) (*Resolved, error) {
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	r, err := cfg.Resolve(preset)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		r.Path = path
	}
	return r, nil
}

// Resolve applies c on top of its preset. A non-empty preset overrides
// c.Preset.
func (c *Config) Resolve(preset string) (*Resolved, error) {
	if err := checkVersion(c.Version); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(preset)
	if name == "" {
		name = strings.TrimSpace(c.Preset)
	}
	if name == "" {
		name = string(PresetSplash)
	}
	r, err := presetDefaults(Preset(strings.ToLower(name)))
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		key string
		v   *int
		dst *time.Duration
	}{
		{"enter_ms", c.EnterMS, &r.Enter},
		{"exit_ms", c.ExitMS, &r.Exit},
		{"loop_ms", c.LoopMS, &r.Loop},
		{"auto_advance_ms", c.AutoAdvanceMS, &r.AutoAdvance},
	} {
		if f.v == nil {
			continue
		}
		if *f.v < 0 {
			return nil, fmt.Errorf("%s must not be negative (got %d)", f.key, *f.v)
		}
		if int64(*f.v) > maxMS {
			return nil, fmt.Errorf("%s is too large (got %d, max %d)", f.key, *f.v, maxMS)
		}
		*f.dst = time.Duration(*f.v) * time.Millisecond
	}
	if c.AutoAdvanceMS != nil {
		r.HasAutoAdvance = *c.AutoAdvanceMS > 0
	}
	if c.AutoHide != nil {
		r.AutoHide = *c.AutoHide
	}

	for _, f := range []struct {
		key string
		v   string
		dst *string
	}{
		{"enter_curve", c.EnterCurve, &r.EnterCurveName},
		{"exit_curve", c.ExitCurve, &r.ExitCurveName},
	} {
		if f.v == "" {
			continue
		}
		if _, ok := animation.CurveByName(f.v); !ok {
			return nil, fmt.Errorf("%s: unknown curve %q (want one of %s)", f.key, f.v, strings.Join(animation.CurveNames(), ", "))
		}
		*f.dst = f.v
	}

	if c.Render.Frames < 0 || c.Render.Size < 0 {
		return nil, fmt.Errorf("render.frames and render.size must not be negative")
	}
	if c.Render.Frames > 0 {
		r.Frames = c.Render.Frames
	}
	if c.Render.Size > 0 {
		r.Size = c.Render.Size
	}
	if c.Render.Background != "" {
		if r.Background, err = filmstrip.ParseColor(c.Render.Background); err != nil {
			return nil, fmt.Errorf("render.background: %w", err)
		}
	}
	if c.Render.Foreground != "" {
		if r.Foreground, err = filmstrip.ParseColor(c.Render.Foreground); err != nil {
			return nil, fmt.Errorf("render.foreground: %w", err)
		}
	}
	return r, nil
}

func checkVersion(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("version %q is not a valid semantic version", v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return fmt.Errorf("unsupported schema version %s (this build reads %s)", v, semver.Major(SchemaVersion))
	}
	if semver.Compare(v, SchemaVersion) > 0 {
		return fmt.Errorf("schema version %s is newer than supported %s", v, SchemaVersion)
	}
	return nil
}

func presetDefaults(p Preset) (*Resolved, error) {
	r := &Resolved{
		Preset:     p,
		Frames:     12,
		Size:       64,
		Background: filmstrip.ColorInk,
		Foreground: filmstrip.ColorAccent,
	}
	switch p {
	case PresetSplash:
		r.Enter = visibility.SplashEnterDuration
		r.Exit = visibility.SplashExitDuration
		r.Loop = visibility.SplashLoopDuration
		r.AutoAdvance = visibility.SplashDwell
		r.HasAutoAdvance = true
		r.AutoHide = true
		r.EnterCurveName = "ease-out"
		r.ExitCurveName = "ease-in"
	case PresetOverlay:
		r.Enter = visibility.OverlayEnterDuration
		r.Exit = visibility.OverlayExitDuration
		r.Loop = visibility.OverlayLoopDuration
		r.EnterCurveName = "linear"
		r.ExitCurveName = "linear"
	default:
		return nil, fmt.Errorf("unknown preset %q (want %s or %s)", p, PresetSplash, PresetOverlay)
	}
	return r, nil
}

// Build returns the controller configuration. onAdvance is used only
// when auto-advance is enabled; nil means a no-op.
func (r *Resolved) Build(onAdvance func()) visibility.Config {
	enter, _ := animation.CurveByName(r.EnterCurveName)
	exit, _ := animation.CurveByName(r.ExitCurveName)
	cfg := visibility.Config{
		EnterDuration: r.Enter,
		ExitDuration:  r.Exit,
		LoopDuration:  r.Loop,
		EnterCurve:    enter,
		ExitCurve:     exit,
	}
	if r.HasAutoAdvance {
		if onAdvance == nil {
			onAdvance = func() {}
		}
		cfg.AutoAdvance = &visibility.AutoAdvance{
			Delay:     r.AutoAdvance,
			OnAdvance: onAdvance,
			Hide:      r.AutoHide,
		}
	}
	return cfg
}

// Style returns the appearance style for the preset.
func (r *Resolved) Style() visibility.AppearanceStyle {
	if r.Preset == PresetOverlay {
		return visibility.OverlayAppearance()
	}
	return visibility.SplashAppearance()
}

// Cycle is how long one show, dwell and hide round trip takes, used to
// pick sampling ranges.
func (r *Resolved) Cycle() time.Duration {
	dwell := r.Loop
	if r.HasAutoAdvance {
		dwell = r.AutoAdvance
	}
	if dwell <= 0 {
		dwell = time.Second
	}
	return r.Enter + dwell + r.Exit
}
