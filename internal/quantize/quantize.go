// Package quantize implements the vertex quantizer (the "quantize"
// pipeline step): it rewrites selected attribute classes to a
// lower-precision component type, storing a per-accessor dequantization
// scale/offset so the decoded values downstream steps (and the final
// consumer) see stay numerically equivalent up to the quantization grid.
package quantize

import (
	"math"

	"github.com/gltfpipe/glboptimize/document"
)

// Options selects which attribute classes to quantize. Every field
// defaults to true when nil, per the step's config table.
type Options struct {
	Position *bool
	Normal   *bool
	Texcoord *bool
	Color    *bool
}

func (o Options) position() bool { return boolOrDefault(o.Position, true) }
func (o Options) normal() bool   { return boolOrDefault(o.Normal, true) }
func (o Options) texcoord() bool { return boolOrDefault(o.Texcoord, true) }
func (o Options) color() bool    { return boolOrDefault(o.Color, true) }

func boolOrDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Stats reports which attribute classes were touched and the aggregate
// byte-size effect.
type Stats struct {
	AttributesQuantized []string
	OriginalSize        int
	QuantizedSize       int
	ReductionRatio      float32
}

// Quantize rewrites each enabled attribute class across every primitive
// to a lower-precision component type. Tangents are quantized alongside
// normals, since a dropped-precision normal without a matching tangent
// would reintroduce the |w|≈1 error the sanitizer just fixed.
func Quantize(d *document.Document, opts Options) *Stats {
	stats := &Stats{}
	touched := map[string]bool{}

	seen := map[int]bool{}
	for _, mesh := range d.Meshes {
		for _, p := range mesh.Primitives {
			if opts.position() {
				if quantizeSemantic(d, p, document.SemanticPosition, document.ComponentUnsignedShort, seen, stats) {
					touched["POSITION"] = true
				}
			}
			if opts.normal() {
				if quantizeSemantic(d, p, document.SemanticNormal, document.ComponentByte, seen, stats) {
					touched["NORMAL"] = true
				}
				if quantizeSemantic(d, p, document.SemanticTangent, document.ComponentByte, seen, stats) {
					touched["TANGENT"] = true
				}
			}
			if opts.texcoord() {
				for n := 0; n < 4; n++ {
					if quantizeSemantic(d, p, document.TexcoordSemantic(n), document.ComponentUnsignedShort, seen, stats) {
						touched["TEXCOORD"] = true
					}
				}
			}
			if opts.color() {
				for n := 0; n < 4; n++ {
					if quantizeSemantic(d, p, document.ColorSemantic(n), document.ComponentUnsignedByte, seen, stats) {
						touched["COLOR"] = true
					}
				}
			}
		}
	}

	for sem := range touched {
		stats.AttributesQuantized = append(stats.AttributesQuantized, sem)
	}
	if stats.OriginalSize > 0 {
		stats.ReductionRatio = float32(stats.QuantizedSize) / float32(stats.OriginalSize)
	} else {
		stats.ReductionRatio = 1
	}
	return stats
}

// quantizeSemantic quantizes the accessor bound to semantic on p exactly
// once (seen de-dupes accessors shared by multiple primitives, e.g. after
// merge) and folds the size delta into stats. Returns whether it touched
// anything.
func quantizeSemantic(d *document.Document, p *document.Primitive, semantic string, target document.ComponentType, seen map[int]bool, stats *Stats) bool {
	idx, ok := p.Attributes[semantic]
	if !ok {
		return false
	}
	a := d.Accessors[idx]
	originalSize := byteSize(a.Count, a.Type.ComponentCount(), document.ComponentFloat)
	if seen[idx] {
		// Already quantized via another primitive sharing this accessor;
		// still counts toward this primitive's reported size.
		stats.OriginalSize += originalSize
		stats.QuantizedSize += byteSize(a.Count, a.Type.ComponentCount(), a.ComponentType)
		return true
	}
	seen[idx] = true

	comps := a.Type.ComponentCount()
	scale, offset := fitScaleOffset(a, comps, target)
	a.Scale = scale
	a.Offset = offset
	a.ComponentType = target
	// Normalized stays false: the accessor's own Scale/Offset already
	// carry the dequantization transform (applyTransform/removeTransform
	// in the document package), so the writer just casts the raw integer
	// straight through rather than re-applying glTF's built-in
	// symmetric normalized-int mapping on top of it.
	a.Normalized = false
	roundToGrid(a, comps, target)

	stats.OriginalSize += originalSize
	stats.QuantizedSize += byteSize(a.Count, comps, target)
	return true
}

func byteSize(count, comps int, ct document.ComponentType) int {
	return count * comps * ct.Size()
}

// fitScaleOffset computes, per component, the [min, max] -> [0, maxInt]
// affine map that round-trips through target's integer range.
func fitScaleOffset(a *document.Accessor, comps int, target document.ComponentType) ([]float32, []float32) {
	scale := make([]float32, comps)
	offset := make([]float32, comps)
	maxInt := maxIntValue(target)

	for c := 0; c < comps; c++ {
		min, max := float32(math.Inf(1)), float32(math.Inf(-1))
		for i := 0; i < a.Count; i++ {
			v := a.Data[i*comps+c]
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if a.Count == 0 || max <= min {
			scale[c], offset[c] = 1, 0
			continue
		}
		scale[c] = (max - min) / maxInt
		offset[c] = min
	}
	return scale, offset
}

// roundToGrid simulates the precision loss the new component type
// imposes by snapping every value to the nearest representable grid
// point under its fitted scale/offset.
func roundToGrid(a *document.Accessor, comps int, target document.ComponentType) {
	maxInt := maxIntValue(target)
	for i := 0; i < a.Count*comps; i++ {
		c := i % comps
		s, o := a.Scale[c], a.Offset[c]
		if s == 0 {
			continue
		}
		raw := (a.Data[i] - o) / s
		raw = float32(math.Round(float64(raw)))
		if raw < 0 {
			raw = 0
		}
		if raw > maxInt {
			raw = maxInt
		}
		a.Data[i] = o + raw*s
	}
}

func maxIntValue(ct document.ComponentType) float32 {
	switch ct {
	case document.ComponentByte:
		return 127
	case document.ComponentUnsignedByte:
		return 255
	case document.ComponentShort:
		return 32767
	case document.ComponentUnsignedShort:
		return 65535
	default:
		return 1
	}
}
