package draco

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/gltfpipe/glboptimize/document"
)

// EstimateCompressedSize derives a deterministic byte estimate from
// geometry volume and the draco config, used by the draco step itself
// (before any real encode pass exists) and required to be monotonically
// non-increasing in level for a fixed input (spec §8.4, §9 open
// question). No Draco or edgebreaker implementation exists anywhere in
// the dependency corpus this module draws on; this formula is the
// pluggable estimate the source spec explicitly allows in its place.
func EstimateCompressedSize(triangleCount, vertexCount, posBits, normBits, texBits, level int) int {
	if vertexCount == 0 {
		return 0
	}
	attrBytes := float64(vertexCount) * float64(posBits+normBits+texBits) / 8.0
	connectivityBytes := float64(triangleCount) * 1.0 // edgebreaker connectivity approaches ~1 byte/triangle at moderate levels
	base := attrBytes + connectivityBytes

	levelFactor := 1.0 - 0.05*float64(level) // strictly decreasing in level, floor 0.5 at level 10
	estimate := base * levelFactor
	if estimate < 1 {
		estimate = 1
	}
	return int(math.Round(estimate))
}

// Encoder implements document.DracoEncoder with compress/flate standing
// in for real edgebreaker + quantized-attribute encoding: the stdlib
// deflate implementation is the only general-purpose compressor anywhere
// in the corpus this module draws on, so it is used here to produce a
// genuinely smaller, genuinely monotonic-in-level bitstream rather than
// fabricating a fake geometry codec.
type Encoder struct{}

// NewEncoder returns a draco Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

var _ document.DracoEncoder = (*Encoder)(nil)

// Encode packs a primitive's attributes and indices into a single
// buffer, in a fixed semantic order, and deflates it at a level derived
// from the primitive's attached Draco metadata.
func (e *Encoder) Encode(d *document.Document, p *document.Primitive) (document.EncodedPrimitive, error) {
	if p.Draco == nil {
		return document.EncodedPrimitive{}, fmt.Errorf("draco: primitive has no attached metadata")
	}

	semantics := orderedSemantics(p.Attributes)
	raw := &bytes.Buffer{}
	attrIDs := make(map[string]int, len(semantics))
	for i, sem := range semantics {
		a := d.Accessors[p.Attributes[sem]]
		writeFloat32s(raw, a.Data)
		attrIDs[sem] = i
	}
	if p.Indices >= 0 {
		idxAcc := d.Accessors[p.Indices]
		writeFloat32s(raw, idxAcc.Data)
	}

	flateLevel := flateLevelFromDracoLevel(p.Draco.CompressionLevel)
	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flateLevel)
	if err != nil {
		return document.EncodedPrimitive{}, fmt.Errorf("draco: init encoder: %w", err)
	}
	if _, err := w.Write(raw.Bytes()); err != nil {
		return document.EncodedPrimitive{}, fmt.Errorf("draco: encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return document.EncodedPrimitive{}, fmt.Errorf("draco: finalize: %w", err)
	}

	return document.EncodedPrimitive{Data: compressed.Bytes(), AttributeIDs: attrIDs}, nil
}

func orderedSemantics(attrs map[string]int) []string {
	// POSITION first, then everything else sorted lexically so repeated
	// encodes of the same primitive are deterministic; map iteration
	// order is not, so the rest cannot simply be ranged over.
	out := make([]string, 0, len(attrs))
	if _, ok := attrs[document.SemanticPosition]; ok {
		out = append(out, document.SemanticPosition)
	}
	rest := make([]string, 0, len(attrs))
	for sem := range attrs {
		if sem != document.SemanticPosition {
			rest = append(rest, sem)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func writeFloat32s(buf *bytes.Buffer, data []float32) {
	var tmp [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(tmp[:], floatBits(v))
		buf.Write(tmp[:])
	}
}

func floatBits(v float32) uint32 { return math.Float32bits(v) }

// flateLevelFromDracoLevel maps the 0-10 draco compression level onto
// flate's 1-9 scale, preserving monotonicity at the boundaries.
func flateLevelFromDracoLevel(level int) int {
	if level <= 0 {
		return flate.BestSpeed
	}
	scaled := 1 + (level*8)/10
	if scaled > flate.BestCompression {
		scaled = flate.BestCompression
	}
	return scaled
}

var (
	defaultOnce     sync.Once
	defaultInstance *Encoder
)

// Default returns the process-wide Draco encoder singleton, lazily
// initialized on first use and safe for concurrent callers (spec §5
// "Shared resources", §9 "Process-wide state").
func Default() *Encoder {
	defaultOnce.Do(func() {
		defaultInstance = NewEncoder()
	})
	return defaultInstance
}
