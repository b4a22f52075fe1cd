// Package pipelinecfg turns a YAML request (or a named preset) into a
// pipeline.Options, following the same defaults-then-file merge shape
// avatar29A-midgard-ro/internal/config uses for its own Config.
package pipelinecfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gltfpipe/glboptimize/internal/texture"
	"github.com/gltfpipe/glboptimize/pipeline"
)

// LoggingConfig holds the logging block of the YAML file. The CLI shell
// does not read it: its logging comes from the -log-level and -log-file
// flags. The pipeline core has no logging configuration of its own.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// CleanConfig mirrors pipeline.CleanOptions with YAML tags.
type CleanConfig struct {
	Enabled               bool  `yaml:"enabled"`
	RemoveUnusedNodes     *bool `yaml:"remove_unused_nodes"`
	RemoveUnusedMaterials *bool `yaml:"remove_unused_materials"`
	RemoveUnusedTextures  *bool `yaml:"remove_unused_textures"`
}

// MergeConfig mirrors pipeline.MergeOptions.
type MergeConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SimplifyConfig mirrors pipeline.SimplifyOptions.
type SimplifyConfig struct {
	Enabled     bool     `yaml:"enabled"`
	TargetRatio *float32 `yaml:"target_ratio"`
	TargetCount *int     `yaml:"target_count"`
	Error       *float32 `yaml:"error"`
	LockBorder  bool     `yaml:"lock_border"`
}

// QuantizeConfig mirrors pipeline.QuantizeOptions.
type QuantizeConfig struct {
	Enabled          bool  `yaml:"enabled"`
	QuantizePosition *bool `yaml:"quantize_position"`
	QuantizeNormal   *bool `yaml:"quantize_normal"`
	QuantizeTexcoord *bool `yaml:"quantize_texcoord"`
	QuantizeColor    *bool `yaml:"quantize_color"`
}

// DracoConfig mirrors pipeline.DracoOptions.
type DracoConfig struct {
	Enabled          bool `yaml:"enabled"`
	CompressionLevel *int `yaml:"compression_level"`
	QuantizePosition *int `yaml:"quantize_position"`
	QuantizeNormal   *int `yaml:"quantize_normal"`
	QuantizeTexcoord *int `yaml:"quantize_texcoord"`
}

// TextureConfig mirrors pipeline.TextureOptions.
type TextureConfig struct {
	Enabled bool     `yaml:"enabled"`
	Mode    string   `yaml:"mode"`
	Quality *int     `yaml:"quality"`
	Slots   []string `yaml:"slots"`
}

// FileConfig is the YAML-level request shape a caller hands the CLI
// shell: either a bare preset name, or an explicit per-step override
// set (or both — preset first, overrides layered on top).
type FileConfig struct {
	Preset      string          `yaml:"preset"`
	WorkerCount int             `yaml:"worker_count"`
	Logging     LoggingConfig   `yaml:"logging"`
	Clean       *CleanConfig    `yaml:"clean"`
	Merge       *MergeConfig    `yaml:"merge"`
	Simplify    *SimplifyConfig `yaml:"simplify"`
	Quantize    *QuantizeConfig `yaml:"quantize"`
	Draco       *DracoConfig    `yaml:"draco"`
	Texture     *TextureConfig  `yaml:"texture"`
}

// Default returns a FileConfig with every step disabled and info-level
// logging, the zero-configuration starting point Load falls back to.
func Default() *FileConfig {
	return &FileConfig{Logging: LoggingConfig{Level: "info"}}
}

// Load reads path as YAML and resolves it to a pipeline.Options: the
// named preset supplies the base (defaults to every step disabled when
// Preset is empty), then any per-step block present in the file
// overrides that base entirely for that step.
func Load(path string) (*FileConfig, pipeline.Options, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pipeline.Options{}, fmt.Errorf("pipelinecfg: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pipeline.Options{}, fmt.Errorf("pipelinecfg: parse %s: %w", path, err)
	}

	opts, err := cfg.ToOptions()
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	return cfg, opts, nil
}

// ResolvePreset looks up name in pipeline.Presets, returning an error
// for an unknown name rather than silently falling back to defaults.
func ResolvePreset(name string) (pipeline.Options, error) {
	ctor, ok := pipeline.Presets[name]
	if !ok {
		return pipeline.Options{}, fmt.Errorf("pipelinecfg: unknown preset %q", name)
	}
	return ctor(), nil
}

// ToOptions resolves cfg to a pipeline.Options: Preset (if set) supplies
// the base, then every non-nil per-step block in cfg overwrites that
// step's options wholesale.
func (c *FileConfig) ToOptions() (pipeline.Options, error) {
	var opts pipeline.Options
	if c.Preset != "" {
		base, err := ResolvePreset(c.Preset)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts = base
	}
	opts.WorkerCount = c.WorkerCount

	if c.Clean != nil {
		opts.Clean = pipeline.CleanOptions{
			Enabled:               c.Clean.Enabled,
			RemoveUnusedNodes:     c.Clean.RemoveUnusedNodes,
			RemoveUnusedMaterials: c.Clean.RemoveUnusedMaterials,
			RemoveUnusedTextures:  c.Clean.RemoveUnusedTextures,
		}
	}
	if c.Merge != nil {
		opts.Merge = pipeline.MergeOptions{Enabled: c.Merge.Enabled}
	}
	if c.Simplify != nil {
		opts.Simplify = pipeline.SimplifyOptions{
			Enabled:     c.Simplify.Enabled,
			TargetRatio: c.Simplify.TargetRatio,
			TargetCount: c.Simplify.TargetCount,
			Error:       c.Simplify.Error,
			LockBorder:  c.Simplify.LockBorder,
		}
	}
	if c.Quantize != nil {
		opts.Quantize = pipeline.QuantizeOptions{
			Enabled:          c.Quantize.Enabled,
			QuantizePosition: c.Quantize.QuantizePosition,
			QuantizeNormal:   c.Quantize.QuantizeNormal,
			QuantizeTexcoord: c.Quantize.QuantizeTexcoord,
			QuantizeColor:    c.Quantize.QuantizeColor,
		}
	}
	if c.Draco != nil {
		opts.Draco = pipeline.DracoOptions{
			Enabled:          c.Draco.Enabled,
			CompressionLevel: c.Draco.CompressionLevel,
			QuantizePosition: c.Draco.QuantizePosition,
			QuantizeNormal:   c.Draco.QuantizeNormal,
			QuantizeTexcoord: c.Draco.QuantizeTexcoord,
		}
	}
	if c.Texture != nil {
		mode := texture.ModeETC1S
		if c.Texture.Mode != "" {
			mode = texture.Mode(c.Texture.Mode)
		}
		opts.Texture = pipeline.TextureOptions{
			Enabled: c.Texture.Enabled,
			Mode:    mode,
			Quality: c.Texture.Quality,
			Slots:   c.Texture.Slots,
		}
	}
	return opts, opts.Validate()
}
