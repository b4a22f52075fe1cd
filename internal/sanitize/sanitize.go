// Package sanitize implements the two-phase geometry fixer that brackets
// the optimization pipeline: RepairInput runs before any other step,
// RepairOutput after, sharing the same validation/regeneration helpers.
// Downstream steps — especially simplify and draco — misbehave on
// non-finite data and invalid tangents, so both phases guarantee a
// clean-data baseline at minimal cost.
package sanitize

import (
	"math"

	"github.com/gltfpipe/glboptimize/document"
)

// GeometryFixResult reports what a repair pass changed.
type GeometryFixResult struct {
	InvalidVerticesFixed     int
	NormalsRegenerated       int
	TangentsRemoved          int
	EmptyAccessorsRemoved    int
	TotalPrimitivesProcessed int
}

// RepairInput runs the sanitizer before any other pipeline step.
func RepairInput(d *document.Document) *GeometryFixResult {
	return repair(d, false)
}

// RepairOutput runs the sanitizer after every other enabled step. Unlike
// RepairInput, it also regenerates normals on any primitive that ended up
// without one — simplification or quantization may have invalidated them.
func RepairOutput(d *document.Document) *GeometryFixResult {
	return repair(d, true)
}

func repair(d *document.Document, outputPhase bool) *GeometryFixResult {
	res := &GeometryFixResult{}

	for _, mesh := range d.Meshes {
		for _, p := range mesh.Primitives {
			res.TotalPrimitivesProcessed++

			res.InvalidVerticesFixed += fixNonFinite(d, p, document.SemanticPosition)
			res.InvalidVerticesFixed += fixNonFinite(d, p, document.SemanticNormal)
			res.InvalidVerticesFixed += fixNonFinite(d, p, document.TexcoordSemantic(0))
			res.InvalidVerticesFixed += fixNonFinite(d, p, document.TexcoordSemantic(1))

			if regenerated := validateNormals(d, p, outputPhase); regenerated {
				res.NormalsRegenerated++
			}
			if removeBadTangent(d, p) {
				res.TangentsRemoved++
			}
		}
	}

	res.EmptyAccessorsRemoved = disposeEmptyAccessors(d)
	return res
}

func fixNonFinite(d *document.Document, p *document.Primitive, semantic string) int {
	idx, ok := p.Attributes[semantic]
	if !ok {
		return 0
	}
	a := d.Accessors[idx]
	fixed := 0
	for i, v := range a.Data {
		if !isFinite(v) {
			a.Data[i] = 0
			fixed++
		}
	}
	return fixed
}

// validateNormals samples every ceil(count/10)-th vector of the
// primitive's NORMAL accessor; if any sampled vector is non-finite or its
// length falls outside [0.5, 1.5], every normal is regenerated from area-
// weighted face normals. On the output phase, a primitive with POSITION
// but no NORMAL at all also gets one generated.
func validateNormals(d *document.Document, p *document.Primitive, outputPhase bool) bool {
	posIdx, hasPos := p.Attributes[document.SemanticPosition]
	normIdx, hasNorm := p.Attributes[document.SemanticNormal]

	if !hasNorm {
		if outputPhase && hasPos {
			generateNormals(d, p, posIdx)
			return true
		}
		return false
	}

	norm := d.Accessors[normIdx]
	if norm.Type != document.TypeVec3 || norm.Count == 0 {
		return false
	}

	step := (norm.Count + 9) / 10
	if step < 1 {
		step = 1
	}
	needsRegen := false
	for i := 0; i < norm.Count; i += step {
		v := norm.Vec3At(i)
		if !isFinite(v[0]) || !isFinite(v[1]) || !isFinite(v[2]) {
			needsRegen = true
			break
		}
		length := vecLength(v)
		if length < 0.5 || length > 1.5 {
			needsRegen = true
			break
		}
	}
	if !needsRegen {
		return false
	}
	if !hasPos {
		return false
	}
	generateNormals(d, p, posIdx)
	return true
}

// generateNormals computes area-weighted face normals across the
// primitive's triangles (indexed, or sequential if unindexed) and writes
// a per-vertex normalized NORMAL accessor, creating one if necessary.
// Zero-length accumulations (isolated or degenerate vertices) fall back
// to (0,1,0).
func generateNormals(d *document.Document, p *document.Primitive, posIdx int) {
	pos := d.Accessors[posIdx]
	vertexCount := pos.Count
	accum := make([][3]float32, vertexCount)

	tris := triangleIndices(d, p, vertexCount)
	for t := 0; t < len(tris); t += 3 {
		i0, i1, i2 := tris[t], tris[t+1], tris[t+2]
		if i0 >= vertexCount || i1 >= vertexCount || i2 >= vertexCount {
			continue
		}
		v0, v1, v2 := pos.Vec3At(i0), pos.Vec3At(i1), pos.Vec3At(i2)
		fn := faceNormalAreaWeighted(v0, v1, v2)
		accum[i0] = vecAdd(accum[i0], fn)
		accum[i1] = vecAdd(accum[i1], fn)
		accum[i2] = vecAdd(accum[i2], fn)
	}

	normIdx, ok := p.Attributes[document.SemanticNormal]
	var norm *document.Accessor
	if ok {
		norm = d.Accessors[normIdx]
		if norm.Count != vertexCount {
			norm.Data = make([]float32, vertexCount*3)
			norm.Count = vertexCount
		}
	} else {
		norm = &document.Accessor{
			ComponentType: document.ComponentFloat,
			Type:          document.TypeVec3,
			Count:         vertexCount,
			Data:          make([]float32, vertexCount*3),
		}
		d.Accessors = append(d.Accessors, norm)
		p.Attributes[document.SemanticNormal] = len(d.Accessors) - 1
	}

	for i := 0; i < vertexCount; i++ {
		n := accum[i]
		length := vecLength(n)
		if length < 1e-12 {
			norm.SetVec3At(i, [3]float32{0, 1, 0})
			continue
		}
		norm.SetVec3At(i, [3]float32{n[0] / length, n[1] / length, n[2] / length})
	}
}

// removeBadTangent drops the TANGENT accessor binding from the primitive
// when its shape or sampled |w| fails invariant 4. The accessor itself
// stays in Document.Accessors: disposeEmptyAccessors only reclaims
// accessors that hold no data.
func removeBadTangent(d *document.Document, p *document.Primitive) bool {
	idx, ok := p.Attributes[document.SemanticTangent]
	if !ok {
		return false
	}
	tan := d.Accessors[idx]
	if tan.Type != document.TypeVec4 {
		delete(p.Attributes, document.SemanticTangent)
		return true
	}

	step := (tan.Count + 9) / 10
	if step < 1 {
		step = 1
	}
	bad := false
	for i := 0; i < tan.Count; i += step {
		v := tan.Vec4At(i)
		if !isFinite(v[0]) || !isFinite(v[1]) || !isFinite(v[2]) || !isFinite(v[3]) {
			bad = true
			break
		}
		if math.Abs(math.Abs(float64(v[3]))-1) > 0.1 {
			bad = true
			break
		}
	}
	if !bad {
		return false
	}
	delete(p.Attributes, document.SemanticTangent)
	return true
}

// disposeEmptyAccessors drops accessors with a nil/empty backing array
// that nothing besides the root still references (invariant 6).
func disposeEmptyAccessors(d *document.Document) int {
	drop := map[int]bool{}
	for i, a := range d.Accessors {
		if a.Count != 0 && len(a.Data) != 0 {
			continue
		}
		if d.HasOtherReferrers(i) {
			continue
		}
		drop[i] = true
	}
	return d.RemoveAccessors(drop)
}

func triangleIndices(d *document.Document, p *document.Primitive, vertexCount int) []int {
	if p.Indices >= 0 {
		idxAcc := d.Accessors[p.Indices]
		out := make([]int, idxAcc.Count)
		for i := 0; i < idxAcc.Count; i++ {
			out[i] = idxAcc.IndexAt(i)
		}
		return out
	}
	out := make([]int, vertexCount)
	for i := range out {
		out[i] = i
	}
	return out
}

func faceNormalAreaWeighted(v0, v1, v2 [3]float32) [3]float32 {
	e1 := vecSub(v1, v0)
	e2 := vecSub(v2, v0)
	return vecCross(e1, e2) // unnormalized: magnitude carries the triangle's area weight
}

func isFinite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

func vecLength(v [3]float32) float32 {
	return float32(math.Sqrt(float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1]) + float64(v[2])*float64(v[2])))
}

func vecAdd(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func vecSub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func vecCross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
