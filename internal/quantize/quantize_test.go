package quantize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltfpipe/glboptimize/document"
)

func primDoc() (*document.Document, *document.Primitive) {
	d := document.NewDocument()
	pos := &document.Accessor{
		ComponentType: document.ComponentFloat,
		Type:          document.TypeVec3,
		Count:         3,
		Data:          []float32{0, 0, 0, 10, 0, 0, 0, 10, 0},
	}
	uv := &document.Accessor{
		ComponentType: document.ComponentFloat,
		Type:          document.TypeVec2,
		Count:         3,
		Data:          []float32{0, 0, 1, 0, 0, 1},
	}
	d.Accessors = []*document.Accessor{pos, uv}
	p := &document.Primitive{
		Attributes: map[string]int{document.SemanticPosition: 0, document.TexcoordSemantic(0): 1},
		Indices:    -1,
		Material:   -1,
		Mode:       document.ModeTriangles,
	}
	d.Meshes = []*document.Mesh{{Primitives: []*document.Primitive{p}}}
	return d, p
}

func TestQuantizePositionSetsComponentType(t *testing.T) {
	d, p := primDoc()
	stats := Quantize(d, Options{})

	posIdx := p.Attributes[document.SemanticPosition]
	pos := d.Accessors[posIdx]
	assert.Equal(t, document.ComponentUnsignedShort, pos.ComponentType)
	assert.False(t, pos.Normalized)
	require.Len(t, pos.Scale, 3)
	assert.Contains(t, stats.AttributesQuantized, "POSITION")
	assert.Contains(t, stats.AttributesQuantized, "TEXCOORD")
}

func TestQuantizeNeverExpandsSize(t *testing.T) {
	d, _ := primDoc()
	stats := Quantize(d, Options{})
	assert.LessOrEqual(t, stats.QuantizedSize, stats.OriginalSize)
}

func TestQuantizeDisabledAttributeUntouched(t *testing.T) {
	d, p := primDoc()
	noPos := false
	Quantize(d, Options{Position: &noPos})

	posIdx := p.Attributes[document.SemanticPosition]
	pos := d.Accessors[posIdx]
	assert.Equal(t, document.ComponentFloat, pos.ComponentType)
}

func TestQuantizeRoundsWithinScaleOffsetTolerance(t *testing.T) {
	d, p := primDoc()
	Quantize(d, Options{})

	posIdx := p.Attributes[document.SemanticPosition]
	pos := d.Accessors[posIdx]
	// vertex 1 was (10,0,0); after quantizing to u16 over [0,10] the
	// grid step is 10/65535, far below any meaningful geometric error.
	assert.InDelta(t, 10.0, pos.Data[3], 0.01)
}
