package draco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltfpipe/glboptimize/document"
)

func triDoc() *document.Document {
	d := document.NewDocument()
	pos := &document.Accessor{ComponentType: document.ComponentFloat, Type: document.TypeVec3, Count: 3, Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}}
	d.Accessors = []*document.Accessor{pos}
	p := &document.Primitive{Attributes: map[string]int{document.SemanticPosition: 0}, Indices: -1, Material: -1, Mode: document.ModeTriangles}
	d.Meshes = []*document.Mesh{{Primitives: []*document.Primitive{p}}}
	return d
}

// multiAttrDoc carries POSITION plus two more attributes, so encoding it
// twice actually exercises the non-POSITION ordering rather than trivially
// passing with a single-attribute primitive.
func multiAttrDoc() *document.Document {
	d := document.NewDocument()
	pos := &document.Accessor{ComponentType: document.ComponentFloat, Type: document.TypeVec3, Count: 3, Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}}
	norm := &document.Accessor{ComponentType: document.ComponentFloat, Type: document.TypeVec3, Count: 3, Data: []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}}
	uv := &document.Accessor{ComponentType: document.ComponentFloat, Type: document.TypeVec2, Count: 3, Data: []float32{0, 0, 1, 0, 0, 1}}
	d.Accessors = []*document.Accessor{pos, norm, uv}
	p := &document.Primitive{
		Attributes: map[string]int{
			document.SemanticPosition:    0,
			document.SemanticNormal:      1,
			document.TexcoordSemantic(0): 2,
		},
		Indices: -1, Material: -1, Mode: document.ModeTriangles,
	}
	d.Meshes = []*document.Mesh{{Primitives: []*document.Primitive{p}}}
	return d
}

func TestValidateRejectsBadLevel(t *testing.T) {
	bad := 11
	err := Options{CompressionLevel: &bad}.Validate()
	require.Error(t, err)
}

func TestValidateRejectsOutOfRangeQuantizeBits(t *testing.T) {
	bad := 31
	err := Options{QuantizePosition: &bad}.Validate()
	require.Error(t, err)
}

func TestAttachSetsMetadataAndStats(t *testing.T) {
	d := triDoc()
	stats, err := Attach(d, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.MeshesCompressed)
	assert.Greater(t, stats.OriginalSize, 0)
	assert.Greater(t, stats.CompressedSize, 0)

	p := d.Meshes[0].Primitives[0]
	require.NotNil(t, p.Draco)
	assert.Equal(t, 7, p.Draco.CompressionLevel)
	assert.Equal(t, 3, p.Draco.EncodeSpeed)
}

func TestEstimateIsMonotonicInLevel(t *testing.T) {
	low := EstimateCompressedSize(100, 300, 14, 10, 12, 0)
	high := EstimateCompressedSize(100, 300, 14, 10, 12, 10)
	assert.LessOrEqual(t, high, low)
}

func TestEncoderProducesNonEmptyDeterministicOutput(t *testing.T) {
	d := triDoc()
	_, err := Attach(d, Options{})
	require.NoError(t, err)

	enc := NewEncoder()
	p := d.Meshes[0].Primitives[0]
	res1, err := enc.Encode(d, p)
	require.NoError(t, err)
	res2, err := enc.Encode(d, p)
	require.NoError(t, err)

	assert.NotEmpty(t, res1.Data)
	assert.Equal(t, res1.Data, res2.Data)
	assert.Equal(t, 0, res1.AttributeIDs[document.SemanticPosition])
}

func TestDefaultEncoderIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestEncoderOrdersMultipleAttributesDeterministically(t *testing.T) {
	d := multiAttrDoc()
	_, err := Attach(d, Options{})
	require.NoError(t, err)

	p := d.Meshes[0].Primitives[0]
	enc := NewEncoder()

	var first document.EncodedPrimitive
	for i := 0; i < 20; i++ {
		res, err := enc.Encode(d, p)
		require.NoError(t, err)
		if i == 0 {
			first = res
			continue
		}
		assert.Equal(t, first.Data, res.Data, "iteration %d produced a different encode", i)
		assert.Equal(t, first.AttributeIDs, res.AttributeIDs, "iteration %d assigned different attribute IDs", i)
	}

	assert.Equal(t, 0, first.AttributeIDs[document.SemanticPosition])
	assert.Equal(t, 1, first.AttributeIDs[document.SemanticNormal])
	assert.Equal(t, 2, first.AttributeIDs[document.TexcoordSemantic(0)])
}
