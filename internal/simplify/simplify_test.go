package simplify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltfpipe/glboptimize/document"
	"github.com/gltfpipe/glboptimize/internal/perr"
	"github.com/gltfpipe/glboptimize/internal/workerpool"
)

// gridDoc builds a 4x4 vertex grid (18 triangles) as a single primitive,
// large enough to give the quadric collapse real room to reduce.
func gridDoc() *document.Document {
	d := document.NewDocument()
	const n = 4
	var data []float32
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			data = append(data, float32(x), float32(y), 0)
		}
	}
	pos := &document.Accessor{ComponentType: document.ComponentFloat, Type: document.TypeVec3, Count: n * n, Data: data}
	d.Accessors = []*document.Accessor{pos}

	var idx []float32
	vertexAt := func(x, y int) int { return y*n + x }
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			a, b, c, e := vertexAt(x, y), vertexAt(x+1, y), vertexAt(x, y+1), vertexAt(x+1, y+1)
			idx = append(idx, float32(a), float32(b), float32(c))
			idx = append(idx, float32(b), float32(e), float32(c))
		}
	}
	idxAcc := &document.Accessor{ComponentType: document.ComponentUnsignedInt, Type: document.TypeScalar, Count: len(idx), Data: idx}
	d.Accessors = append(d.Accessors, idxAcc)

	p := &document.Primitive{
		Attributes: map[string]int{document.SemanticPosition: 0},
		Indices:    1,
		Material:   -1,
		Mode:       document.ModeTriangles,
	}
	d.Meshes = []*document.Mesh{{Primitives: []*document.Primitive{p}}}
	return d
}

func testPool() *workerpool.Pool { return workerpool.New(2, 16, time.Second) }

func TestValidateRejectsBothTargets(t *testing.T) {
	ratio := float32(0.5)
	count := 10
	opts := Options{TargetRatio: &ratio, TargetCount: &count}
	err := opts.Validate()
	require.Error(t, err)
	pe, ok := perr.As(err)
	require.True(t, ok)
	assert.Equal(t, perr.KindInvalidOptions, pe.Kind)
}

func TestValidateRejectsBadRatio(t *testing.T) {
	bad := float32(-1)
	opts := Options{TargetRatio: &bad}
	err := opts.Validate()
	require.Error(t, err)
}

func TestValidateRejectsNonPositiveCount(t *testing.T) {
	zero := 0
	opts := Options{TargetCount: &zero}
	err := opts.Validate()
	require.Error(t, err)
}

func TestSimplifyReducesTriangleCount(t *testing.T) {
	d := gridDoc()
	ratio := float32(0.5)
	opts := Options{TargetRatio: &ratio}

	stats, err := Simplify(context.Background(), d, opts, testPool())
	require.NoError(t, err)
	assert.Equal(t, 18, stats.OriginalTriangles)
	assert.LessOrEqual(t, stats.SimplifiedTriangles, stats.OriginalTriangles)
	assert.Equal(t, 1, stats.MeshesProcessed)
}

func TestSimplifyNeverIncreasesTriangles(t *testing.T) {
	d := gridDoc()
	ratio := float32(1.0)
	opts := Options{TargetRatio: &ratio}

	stats, err := Simplify(context.Background(), d, opts, testPool())
	require.NoError(t, err)
	assert.LessOrEqual(t, stats.SimplifiedTriangles, stats.OriginalTriangles)
}
