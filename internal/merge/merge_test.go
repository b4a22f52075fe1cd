package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltfpipe/glboptimize/document"
)

func twoPrimitivesSharedMaterial() *document.Document {
	d := document.NewDocument()
	d.Materials = []*document.Material{{Name: "shared", BaseColorTexture: -1, MetallicRoughnessTexture: -1, NormalTexture: -1, OcclusionTexture: -1, EmissiveTexture: -1}}

	posA := &document.Accessor{ComponentType: document.ComponentFloat, Type: document.TypeVec3, Count: 3, Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}}
	posB := &document.Accessor{ComponentType: document.ComponentFloat, Type: document.TypeVec3, Count: 3, Data: []float32{2, 0, 0, 3, 0, 0, 2, 1, 0}}
	idxA := &document.Accessor{ComponentType: document.ComponentUnsignedInt, Type: document.TypeScalar, Count: 3, Data: []float32{0, 1, 2}}

	d.Accessors = []*document.Accessor{posA, posB, idxA}

	p1 := &document.Primitive{Attributes: map[string]int{document.SemanticPosition: 0}, Indices: 2, Material: 0, Mode: document.ModeTriangles}
	p2 := &document.Primitive{Attributes: map[string]int{document.SemanticPosition: 1}, Indices: -1, Material: 0, Mode: document.ModeTriangles}
	p3 := &document.Primitive{Attributes: map[string]int{document.SemanticPosition: 0}, Indices: -1, Material: -1, Mode: document.ModeTriangles}

	d.Meshes = []*document.Mesh{{Primitives: []*document.Primitive{p1, p2, p3}}}
	return d
}

func TestMergeReducesSharedMaterialPrimitives(t *testing.T) {
	d := twoPrimitivesSharedMaterial()
	stats, err := New().Execute(d)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.OriginalMeshCount)
	assert.Equal(t, 2, stats.MergedMeshCount, "the two shared-material primitives merge into one; the unmaterialed one stays")
	assert.Equal(t, 1, stats.MeshesReduced)
	require.Len(t, d.Meshes[0].Primitives, 2)
}

func TestMergePreservesMaterialSet(t *testing.T) {
	d := twoPrimitivesSharedMaterial()
	before := len(d.Materials)
	_, err := New().Execute(d)
	require.NoError(t, err)
	assert.Equal(t, before, len(d.Materials))
}

func TestMergeConcatenatesIndicesWithOffset(t *testing.T) {
	d := twoPrimitivesSharedMaterial()
	_, err := New().Execute(d)
	require.NoError(t, err)

	var merged *document.Primitive
	for _, p := range d.Meshes[0].Primitives {
		if p.Material == 0 {
			merged = p
		}
	}
	require.NotNil(t, merged)
	idxAcc := d.Accessors[merged.Indices]
	assert.Equal(t, 6, idxAcc.Count)
	// second primitive's indices (sequential 0,1,2 over its own 3 verts)
	// must be offset by the first primitive's 3 vertices.
	assert.Equal(t, 3, idxAcc.IndexAt(3))
	assert.Equal(t, 4, idxAcc.IndexAt(4))
	assert.Equal(t, 5, idxAcc.IndexAt(5))
}
