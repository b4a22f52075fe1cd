// Package pipeline is the public API of the optimization core: a fixed
// eight-step sequence (two geometry sanitizer passes bracketing clean,
// merge, simplify, quantize, draco, and texture) run over a single
// in-memory document, per step configuration.
package pipeline

import (
	"github.com/gltfpipe/glboptimize/internal/draco"
	"github.com/gltfpipe/glboptimize/internal/prune"
	"github.com/gltfpipe/glboptimize/internal/quantize"
	"github.com/gltfpipe/glboptimize/internal/simplify"
	"github.com/gltfpipe/glboptimize/internal/texture"
)

// CleanOptions configures the resource pruner (clean).
type CleanOptions struct {
	Enabled               bool
	RemoveUnusedNodes     *bool
	RemoveUnusedMaterials *bool
	RemoveUnusedTextures  *bool
}

func (c CleanOptions) toPruneOptions() prune.Options {
	return prune.Options{
		RemoveUnusedNodes:     c.RemoveUnusedNodes,
		RemoveUnusedMaterials: c.RemoveUnusedMaterials,
		RemoveUnusedTextures:  c.RemoveUnusedTextures,
	}
}

// MergeOptions configures the mesh joiner (merge).
type MergeOptions struct {
	Enabled bool
}

// SimplifyOptions configures the mesh simplifier (simplify).
type SimplifyOptions struct {
	Enabled     bool
	TargetRatio *float32
	TargetCount *int
	Error       *float32
	LockBorder  bool
}

func (s SimplifyOptions) toSimplifyOptions() simplify.Options {
	return simplify.Options{
		TargetRatio: s.TargetRatio,
		TargetCount: s.TargetCount,
		Error:       s.Error,
		LockBorder:  s.LockBorder,
	}
}

// QuantizeOptions configures the vertex quantizer (quantize).
type QuantizeOptions struct {
	Enabled          bool
	QuantizePosition *bool
	QuantizeNormal   *bool
	QuantizeTexcoord *bool
	QuantizeColor    *bool
}

func (q QuantizeOptions) toQuantizeOptions() quantize.Options {
	return quantize.Options{
		Position: q.QuantizePosition,
		Normal:   q.QuantizeNormal,
		Texcoord: q.QuantizeTexcoord,
		Color:    q.QuantizeColor,
	}
}

// DracoOptions configures the draco compressor (draco).
type DracoOptions struct {
	Enabled          bool
	CompressionLevel *int
	QuantizePosition *int
	QuantizeNormal   *int
	QuantizeTexcoord *int
}

func (o DracoOptions) toDracoOptions() draco.Options {
	return draco.Options{
		CompressionLevel: o.CompressionLevel,
		QuantizePosition: o.QuantizePosition,
		QuantizeNormal:   o.QuantizeNormal,
		QuantizeTexcoord: o.QuantizeTexcoord,
	}
}

// TextureOptions configures the texture compressor (texture).
type TextureOptions struct {
	Enabled bool
	Mode    texture.Mode
	Quality *int
	Slots   []string
}

func (o TextureOptions) toTextureOptions() texture.Options {
	return texture.Options{Mode: o.Mode, Quality: o.Quality, Slots: o.Slots}
}

// Options is the full per-step configuration object for one pipeline run
// (spec §6 "Configuration object"). Every group's Enabled flag gates
// that step; the two geometry-repair passes are unconditional and have
// no Options of their own.
type Options struct {
	Clean    CleanOptions
	Merge    MergeOptions
	Simplify SimplifyOptions
	Quantize QuantizeOptions
	Draco    DracoOptions
	Texture  TextureOptions

	// WorkerCount bounds the shared worker pool used by simplify and
	// texture for their intra-step fan-out; 0 (or a negative value) uses
	// the scheduler's fixed default of 4 workers.
	WorkerCount int
}

// Validate runs every enabled step's own Validate(), letting a caller
// reject a malformed request before ever calling Execute — e.g. before
// paying for a document read. Execute does not call this itself: each
// step validates its own options when the scheduler reaches it, so a
// failing step's position in Result.Steps is never skipped over.
func (o Options) Validate() error {
	_, err := o.validateSteps()
	return err
}

// validateSteps is Validate's implementation, additionally reporting which
// step's options were rejected.
func (o Options) validateSteps() (string, error) {
	if o.Simplify.Enabled {
		if err := o.Simplify.toSimplifyOptions().Validate(); err != nil {
			return "simplify", err
		}
	}
	if o.Draco.Enabled {
		if err := o.Draco.toDracoOptions().Validate(); err != nil {
			return "draco", err
		}
	}
	if o.Texture.Enabled {
		if err := o.Texture.toTextureOptions().Validate(); err != nil {
			return "texture", err
		}
	}
	return "", nil
}
