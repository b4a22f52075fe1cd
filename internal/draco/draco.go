// Package draco implements the draco pipeline step: it attaches
// edgebreaker compression metadata (quantization bits, encode/decode
// speed) to every geometry-bearing primitive. The actual bitstream is
// produced later, at document.Write time, by the process-wide Encoder
// this package also provides — the step itself only estimates the
// resulting size, since a real encode pass only happens once, at write
// time, per the source spec's own accounting.
package draco

import (
	"fmt"

	"github.com/gltfpipe/glboptimize/document"
	"github.com/gltfpipe/glboptimize/internal/perr"
)

// Options configures one draco invocation.
type Options struct {
	CompressionLevel *int
	QuantizePosition *int
	QuantizeNormal   *int
	QuantizeTexcoord *int
}

func (o Options) level() int { return intOrDefault(o.CompressionLevel, 7) }
func (o Options) qPos() int  { return intOrDefault(o.QuantizePosition, 14) }
func (o Options) qNorm() int { return intOrDefault(o.QuantizeNormal, 10) }
func (o Options) qTex() int  { return intOrDefault(o.QuantizeTexcoord, 12) }

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// Validate checks Options against the step's documented error conditions.
func (o Options) Validate() error {
	if l := o.level(); l < 0 || l > 10 {
		return perr.InvalidOptions("compressionLevel", "[0, 10]", fmt.Sprintf("%v", l))
	}
	for field, v := range map[string]int{"quantizePosition": o.qPos(), "quantizeNormal": o.qNorm(), "quantizeTexcoord": o.qTex()} {
		if v < 1 || v > 30 {
			return perr.InvalidOptions(field, "[1, 30]", fmt.Sprintf("%v", v))
		}
	}
	return nil
}

// Stats reports the draco step's effect.
type Stats struct {
	MeshesCompressed int
	OriginalSize     int
	CompressedSize   int
	CompressionRatio float32
}

// quantizeBitsColor and quantizeBitsGeneric are fixed per the step's
// design — only position/normal/texcoord bits are configurable.
const (
	quantizeBitsColor   = 8
	quantizeBitsGeneric = 12
)

// Attach marks every geometry-bearing primitive with Draco metadata and
// returns a size estimate. It does not touch accessor bytes; that
// happens at document.Write time via a DracoEncoder.
func Attach(d *document.Document, opts Options) (*Stats, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	level := opts.level()
	speed := 10 - level
	stats := &Stats{}

	for _, mesh := range d.Meshes {
		for _, p := range mesh.Primitives {
			posIdx, ok := p.Attributes[document.SemanticPosition]
			if !ok {
				continue
			}
			pos := d.Accessors[posIdx]
			triCount := primitiveTriangleCount(d, p, pos.Count)

			p.Draco = &document.DracoPrimitiveInfo{
				CompressionLevel: level,
				EncodeSpeed:      speed,
				DecodeSpeed:      speed,
				QuantizePosition: opts.qPos(),
				QuantizeNormal:   opts.qNorm(),
				QuantizeTexcoord: opts.qTex(),
				QuantizeColor:    quantizeBitsColor,
				QuantizeGeneric:  quantizeBitsGeneric,
			}

			original := primitiveByteSize(d, p)
			estimate := EstimateCompressedSize(triCount, pos.Count, opts.qPos(), opts.qNorm(), opts.qTex(), level)

			stats.MeshesCompressed++
			stats.OriginalSize += original
			stats.CompressedSize += estimate
		}
	}

	if stats.OriginalSize > 0 {
		stats.CompressionRatio = float32(stats.CompressedSize) / float32(stats.OriginalSize)
	} else {
		stats.CompressionRatio = 1
	}
	return stats, nil
}

func primitiveTriangleCount(d *document.Document, p *document.Primitive, vertexCount int) int {
	if p.Indices >= 0 {
		return d.Accessors[p.Indices].Count / 3
	}
	return vertexCount / 3
}

func primitiveByteSize(d *document.Document, p *document.Primitive) int {
	total := 0
	for _, idx := range p.Attributes {
		a := d.Accessors[idx]
		total += a.Count * a.Type.ComponentCount() * 4 // uncompressed float32 baseline
	}
	if p.Indices >= 0 {
		idxAcc := d.Accessors[p.Indices]
		total += idxAcc.Count * 4
	}
	return total
}
