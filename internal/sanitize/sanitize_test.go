package sanitize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltfpipe/glboptimize/document"
)

func triangleDoc() *document.Document {
	d := document.NewDocument()
	pos := &document.Accessor{
		ComponentType: document.ComponentFloat,
		Type:          document.TypeVec3,
		Count:         3,
		Data:          []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
	}
	d.Accessors = append(d.Accessors, pos)
	p := &document.Primitive{
		Attributes: map[string]int{document.SemanticPosition: 0},
		Indices:    -1,
		Material:   -1,
		Mode:       document.ModeTriangles,
	}
	mesh := &document.Mesh{Primitives: []*document.Primitive{p}}
	d.Meshes = append(d.Meshes, mesh)
	node := &document.Node{Mesh: 0, Skin: -1, Scale: [3]float32{1, 1, 1}, Rotation: [4]float32{0, 0, 0, 1}}
	d.Nodes = append(d.Nodes, node)
	d.Scenes = append(d.Scenes, &document.Scene{Nodes: []int{0}})
	d.DefaultScene = 0
	return d
}

func TestFixNonFinitePosition(t *testing.T) {
	d := triangleDoc()
	d.Accessors[0].Data[0] = float32(math.NaN())
	d.Accessors[0].Data[4] = float32(math.Inf(1))

	res := RepairInput(d)
	assert.Equal(t, 2, res.InvalidVerticesFixed)
	assert.Equal(t, float32(0), d.Accessors[0].Data[0])
	assert.Equal(t, float32(0), d.Accessors[0].Data[4])
}

func TestRepairInputLeavesMissingNormalsAbsent(t *testing.T) {
	d := triangleDoc()
	res := RepairInput(d)
	assert.Equal(t, 0, res.NormalsRegenerated, "repairInput does not generate normals for primitives that never had one")

	p := d.Meshes[0].Primitives[0]
	_, hasNormal := p.Attributes[document.SemanticNormal]
	assert.False(t, hasNormal)
}

func TestRepairOutputGeneratesMissingNormals(t *testing.T) {
	d := triangleDoc()
	res := RepairOutput(d)
	assert.Equal(t, 1, res.NormalsRegenerated)

	p := d.Meshes[0].Primitives[0]
	normIdx, ok := p.Attributes[document.SemanticNormal]
	require.True(t, ok)
	norm := d.Accessors[normIdx]
	require.Equal(t, 3, norm.Count)
	v := norm.Vec3At(0)
	length := math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]))
	assert.InDelta(t, 1.0, length, 1e-4)
}

func TestRepairRegeneratesDegenerateNormals(t *testing.T) {
	d := triangleDoc()
	badNorm := &document.Accessor{
		ComponentType: document.ComponentFloat,
		Type:          document.TypeVec3,
		Count:         3,
		Data:          []float32{100, 0, 0, 100, 0, 0, 100, 0, 0}, // length 100, way outside [0.5,1.5]
	}
	d.Accessors = append(d.Accessors, badNorm)
	d.Meshes[0].Primitives[0].Attributes[document.SemanticNormal] = 1

	res := RepairInput(d)
	assert.Equal(t, 1, res.NormalsRegenerated)
}

func TestRemoveBadTangent(t *testing.T) {
	d := triangleDoc()
	badTangent := &document.Accessor{
		ComponentType: document.ComponentFloat,
		Type:          document.TypeVec4,
		Count:         3,
		Data:          []float32{0, 0, 1, 5, 0, 0, 1, 5, 0, 0, 1, 5}, // |w|=5, way off from 1
	}
	d.Accessors = append(d.Accessors, badTangent)
	d.Meshes[0].Primitives[0].Attributes[document.SemanticTangent] = 1

	res := RepairInput(d)
	assert.Equal(t, 1, res.TangentsRemoved)
	_, ok := d.Meshes[0].Primitives[0].Attributes[document.SemanticTangent]
	assert.False(t, ok)
}

func TestDisposeEmptyAccessors(t *testing.T) {
	d := triangleDoc()
	d.Accessors = append(d.Accessors, &document.Accessor{Type: document.TypeScalar, ComponentType: document.ComponentFloat, Count: 0})

	res := RepairInput(d)
	assert.Equal(t, 1, res.EmptyAccessorsRemoved)
	assert.Len(t, d.Accessors, 1)
}
