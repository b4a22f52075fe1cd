package document

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalGLB assembles a one-triangle glb in memory: one POSITION
// accessor, one mesh/node/scene, no materials or textures.
func buildMinimalGLB(t *testing.T) []byte {
	t.Helper()

	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	bin := make([]byte, len(positions)*4)
	for i, v := range positions {
		binary.LittleEndian.PutUint32(bin[i*4:], float32Bits(v))
	}

	jsonDoc := `{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": [0]}],
		"nodes": [{"mesh": 0}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
		"bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": ` + itoa(len(bin)) + `}],
		"buffers": [{"byteLength": ` + itoa(len(bin)) + `}]
	}`

	jsonBytes := padTo4([]byte(jsonDoc), ' ')
	binBytes := padTo4(bin, 0)

	total := 12 + 8 + len(jsonBytes) + 8 + len(binBytes)
	buf := make([]byte, 0, total)
	buf = appendU32(buf, glbMagic)
	buf = appendU32(buf, glbVersion)
	buf = appendU32(buf, uint32(total))
	buf = appendU32(buf, uint32(len(jsonBytes)))
	buf = appendU32(buf, chunkTypeJSON)
	buf = append(buf, jsonBytes...)
	buf = appendU32(buf, uint32(len(binBytes)))
	buf = appendU32(buf, chunkTypeBIN)
	buf = append(buf, binBytes...)
	return buf
}

func TestParseGLB_Minimal(t *testing.T) {
	raw := buildMinimalGLB(t)
	doc, err := parseGLB(raw)
	require.NoError(t, err)

	require.Len(t, doc.Accessors, 1)
	assert.Equal(t, 3, doc.Accessors[0].Count)
	assert.Equal(t, TypeVec3, doc.Accessors[0].Type)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, doc.Accessors[0].Data)

	require.Len(t, doc.Meshes, 1)
	require.Len(t, doc.Meshes[0].Primitives, 1)
	assert.Equal(t, 0, doc.Meshes[0].Primitives[0].Attributes[SemanticPosition])
	assert.Equal(t, 0, doc.DefaultScene)
}

func TestParseGLB_BadMagic(t *testing.T) {
	raw := buildMinimalGLB(t)
	raw[0] = 0x01
	_, err := parseGLB(raw)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestParseGLB_BadVersion(t *testing.T) {
	raw := buildMinimalGLB(t)
	binary.LittleEndian.PutUint32(raw[4:8], 3)
	_, err := parseGLB(raw)
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestParseGLB_LengthMismatch(t *testing.T) {
	raw := buildMinimalGLB(t)
	binary.LittleEndian.PutUint32(raw[8:12], uint32(len(raw)+4))
	_, err := parseGLB(raw)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestParseGLB_TooSmall(t *testing.T) {
	_, err := parseGLB([]byte{0x01, 0x02, 0x03})
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestParseGLB_NoChunks(t *testing.T) {
	raw := []byte{0x67, 0x6C, 0x54, 0x46, 0x02, 0x00, 0x00, 0x00, 0x0C, 0x00, 0x00, 0x00}
	_, err := parseGLB(raw)
	assert.ErrorIs(t, err, ErrMissingJSONChunk)
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	raw := buildMinimalGLB(t)
	doc, err := parseGLB(raw)
	require.NoError(t, err)

	dir := t.TempDir()
	out := filepath.Join(dir, "out.glb")
	require.NoError(t, Write(out, doc))

	reread, err := Read(out)
	require.NoError(t, err)
	require.Len(t, reread.Accessors, 1)
	assert.Equal(t, doc.Accessors[0].Data, reread.Accessors[0].Data)
	assert.Equal(t, doc.Accessors[0].Count, reread.Accessors[0].Count)
}

func TestWalk_Reachability(t *testing.T) {
	raw := buildMinimalGLB(t)
	doc, err := parseGLB(raw)
	require.NoError(t, err)

	r := doc.Walk()
	assert.True(t, r.Nodes[0])
	assert.True(t, r.Meshes[0])
	assert.True(t, r.Accessors[0])
}

func TestRemoveAccessors_RewritesReferences(t *testing.T) {
	raw := buildMinimalGLB(t)
	doc, err := parseGLB(raw)
	require.NoError(t, err)

	// Add a second, unreferenced accessor so removing it shifts nothing
	// for the survivor while still exercising remap logic.
	doc.Accessors = append(doc.Accessors, &Accessor{Type: TypeScalar, ComponentType: ComponentFloat, Count: 0})

	removed := doc.RemoveAccessors(map[int]bool{1: true})
	assert.Equal(t, 1, removed)
	require.Len(t, doc.Accessors, 1)
	assert.Equal(t, 0, doc.Meshes[0].Primitives[0].Attributes[SemanticPosition])
}

func TestTexcoordSemantic(t *testing.T) {
	assert.Equal(t, "TEXCOORD_0", TexcoordSemantic(0))
	assert.Equal(t, "TEXCOORD_7", TexcoordSemantic(7))
}

func TestReadRejectsOversizeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.glb")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())

	_, err = Read(path)
	assert.ErrorIs(t, err, ErrTooLarge)
}
