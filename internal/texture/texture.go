// Package texture implements the texture compressor (the "texture"
// pipeline step): it re-encodes each selected texture as KTX2 in the
// configured Basis Universal mode, falling back to a compact lossy
// format when no KTX2 encoder is available at runtime. Per-texture work
// has disjoint write sets, so it fans out across the shared worker pool.
package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/gltfpipe/glboptimize/document"
	"github.com/gltfpipe/glboptimize/internal/perr"
	"github.com/gltfpipe/glboptimize/internal/workerpool"
)

// Mode selects the Basis Universal encoding family.
type Mode string

const (
	ModeETC1S Mode = "ETC1S"
	ModeUASTC Mode = "UASTC"
)

// Options configures one texture-step invocation.
type Options struct {
	Mode    Mode
	Quality *int
	Slots   []string
}

func (o Options) mode() Mode {
	if o.Mode == "" {
		return ModeETC1S
	}
	return o.Mode
}

func (o Options) quality() int {
	if o.Quality != nil {
		return *o.Quality
	}
	if o.mode() == ModeUASTC {
		return 2
	}
	return 128
}

// Validate checks Options against the step's documented ranges.
func (o Options) Validate() error {
	m := o.mode()
	if m != ModeETC1S && m != ModeUASTC {
		return perr.InvalidOptions("mode", "ETC1S or UASTC", string(m))
	}
	q := o.quality()
	switch m {
	case ModeETC1S:
		if q < 1 || q > 255 {
			return perr.InvalidOptions("quality", "[1, 255]", fmt.Sprintf("%v", q))
		}
	case ModeUASTC:
		if q < 0 || q > 4 {
			return perr.InvalidOptions("quality", "[0, 4]", fmt.Sprintf("%v", q))
		}
	}
	return nil
}

// Detail reports one texture's before/after size.
type Detail struct {
	Name           string
	OriginalFormat string
	OriginalSize   int
	CompressedSize int
	Method         string // "ktx2" or the fallback method name actually used
}

// Stats reports the texture step's aggregate effect.
type Stats struct {
	TexturesProcessed int
	OriginalSize      int
	CompressedSize    int
	CompressionRatio  float32
	Details           []Detail
}

// Process re-encodes every texture selected by opts.Slots (or every
// texture, when unset) as KTX2, falling back to a lossy re-encode when
// the KTX2 encoder reports itself unavailable. A document with zero
// textures returns zero stats and is not an error.
func Process(ctx context.Context, d *document.Document, opts Options, encoder KTX2Encoder, pool *workerpool.Pool) (*Stats, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if encoder == nil {
		encoder = Default()
	}

	targets := selectedTextures(d, opts.Slots)
	if len(targets) == 0 {
		return &Stats{CompressionRatio: 1}, nil
	}

	details := make([]Detail, len(targets))
	tasks := make([]workerpool.Task, len(targets))
	for i, texIdx := range targets {
		i, texIdx := i, texIdx
		tasks[i] = func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			detail, err := processOne(d, texIdx, opts, encoder)
			if err != nil {
				return err
			}
			details[i] = detail
			return nil
		}
	}
	if err := pool.RunAll(ctx, tasks); err != nil {
		return nil, perr.OptimizationFailed("texture", err)
	}

	anyKTX2 := false
	stats := &Stats{TexturesProcessed: len(details), Details: details}
	for _, d2 := range details {
		stats.OriginalSize += d2.OriginalSize
		stats.CompressedSize += d2.CompressedSize
		if d2.Method == "ktx2" {
			anyKTX2 = true
		}
	}
	if anyKTX2 {
		d.UseExtension(document.ExtTextureBasisu, true)
	}
	if stats.OriginalSize > 0 {
		stats.CompressionRatio = float32(stats.CompressedSize) / float32(stats.OriginalSize)
	} else {
		stats.CompressionRatio = 1
	}
	return stats, nil
}

func processOne(d *document.Document, texIdx int, opts Options, encoder KTX2Encoder) (Detail, error) {
	tex := d.Textures[texIdx]
	originalSize := len(tex.Data)
	img, format, err := image.Decode(bytes.NewReader(tex.Data))
	if err != nil {
		return Detail{}, fmt.Errorf("texture %q: decode: %w", tex.Name, err)
	}

	detail := Detail{Name: tex.Name, OriginalFormat: format, OriginalSize: originalSize}

	if encoder.Available() {
		compressed, err := encoder.Encode(img, opts.mode(), opts.quality())
		if err != nil {
			return Detail{}, fmt.Errorf("texture %q: ktx2 encode: %w", tex.Name, err)
		}
		tex.Data = compressed
		tex.MimeType = document.MimeKTX2
		detail.Method = "ktx2"
	} else {
		compressed, err := fallbackEncode(img, opts.quality(), opts.mode())
		if err != nil {
			return Detail{}, fmt.Errorf("texture %q: fallback encode: %w", tex.Name, err)
		}
		tex.Data = compressed
		tex.MimeType = document.MimeJPEG
		detail.Method = "fallback-jpeg"
	}

	detail.CompressedSize = len(tex.Data)
	return detail, nil
}

// selectedTextures returns every texture index reachable from a
// material via one of the named slots, or every texture when slots is
// empty.
func selectedTextures(d *document.Document, slots []string) []int {
	if len(slots) == 0 {
		out := make([]int, len(d.Textures))
		for i := range out {
			out[i] = i
		}
		return out
	}
	seen := map[int]bool{}
	var out []int
	for _, m := range d.Materials {
		for _, slot := range slots {
			idx := m.SlotTexture(slot)
			if idx >= 0 && !seen[idx] {
				seen[idx] = true
				out = append(out, idx)
			}
		}
	}
	return out
}
