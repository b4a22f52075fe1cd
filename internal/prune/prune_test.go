package prune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltfpipe/glboptimize/document"
)

func docWithUnusedMaterialAndTexture() *document.Document {
	d := document.NewDocument()
	d.Textures = []*document.Texture{
		{Name: "used", MimeType: document.MimePNG, Data: []byte{1}},
		{Name: "unused", MimeType: document.MimePNG, Data: []byte{2}},
	}
	d.Materials = []*document.Material{
		{Name: "used", BaseColorTexture: 0, MetallicRoughnessTexture: -1, NormalTexture: -1, OcclusionTexture: -1, EmissiveTexture: -1},
		{Name: "unused", BaseColorTexture: 1, MetallicRoughnessTexture: -1, NormalTexture: -1, OcclusionTexture: -1, EmissiveTexture: -1},
	}
	pos := &document.Accessor{ComponentType: document.ComponentFloat, Type: document.TypeVec3, Count: 3, Data: make([]float32, 9)}
	d.Accessors = []*document.Accessor{pos}
	p := &document.Primitive{Attributes: map[string]int{document.SemanticPosition: 0}, Indices: -1, Material: 0, Mode: document.ModeTriangles}
	d.Meshes = []*document.Mesh{{Primitives: []*document.Primitive{p}}}
	d.Nodes = []*document.Node{{Mesh: 0, Skin: -1, Scale: [3]float32{1, 1, 1}, Rotation: [4]float32{0, 0, 0, 1}}}
	d.Scenes = []*document.Scene{{Nodes: []int{0}}}
	d.DefaultScene = 0
	return d
}

func TestCleanRemovesUnusedMaterialAndTexture(t *testing.T) {
	d := docWithUnusedMaterialAndTexture()
	stats := Clean(d, Options{})

	assert.Equal(t, 1, stats.MaterialsRemoved)
	assert.Equal(t, 1, stats.TexturesRemoved)
	require.Len(t, d.Materials, 1)
	require.Len(t, d.Textures, 1)
	assert.Equal(t, "used", d.Materials[0].Name)
	assert.Equal(t, 0, d.Meshes[0].Primitives[0].Material, "surviving primitive's material reference must be remapped")
}

func TestCleanPreservesEmptyNodesWhenDisabled(t *testing.T) {
	d := docWithUnusedMaterialAndTexture()
	emptyLeaf := &document.Node{Mesh: -1, Skin: -1, Scale: [3]float32{1, 1, 1}, Rotation: [4]float32{0, 0, 0, 1}}
	d.Nodes = append(d.Nodes, emptyLeaf)
	d.Scenes[0].Nodes = append(d.Scenes[0].Nodes, 1)

	noRemove := false
	Clean(d, Options{RemoveUnusedNodes: &noRemove})
	assert.Len(t, d.Nodes, 2)
}

func TestCleanCollapsesEmptyLeaves(t *testing.T) {
	d := docWithUnusedMaterialAndTexture()
	emptyLeaf := &document.Node{Mesh: -1, Skin: -1, Scale: [3]float32{1, 1, 1}, Rotation: [4]float32{0, 0, 0, 1}}
	d.Nodes = append(d.Nodes, emptyLeaf)
	d.Scenes[0].Nodes = append(d.Scenes[0].Nodes, 1)

	stats := Clean(d, Options{})
	assert.Equal(t, 1, stats.NodesRemoved)
	assert.Len(t, d.Nodes, 1)
}

func TestCleanRemovesUnreferencedMesh(t *testing.T) {
	d := docWithUnusedMaterialAndTexture()
	orphan := &document.Mesh{Primitives: []*document.Primitive{
		{Attributes: map[string]int{document.SemanticPosition: 0}, Indices: -1, Material: -1, Mode: document.ModeTriangles},
	}}
	d.Meshes = append(d.Meshes, orphan)

	stats := Clean(d, Options{})
	assert.Equal(t, 1, stats.MeshesRemoved)
	require.Len(t, d.Meshes, 1)
	assert.Equal(t, 0, d.Nodes[0].Mesh, "surviving node's mesh reference must be remapped")
}
