package simplify

import (
	"math"

	"github.com/gltfpipe/glboptimize/document"
)

// heMesh is a minimal indexed-triangle mesh representation used only by
// the weld and quadric-collapse passes; it exists for the duration of one
// primitive's simplification and is discarded once rewritePrimitive has
// pulled the result back into accessors.
type heMesh struct {
	verts     [][3]float32
	vertAlive []bool
	tris      [][3]int
	triAlive  []bool
}

// quadric is a symmetric 4x4 error matrix stored as its 10 distinct
// coefficients: a2, ab, ac, ad, b2, bc, bd, c2, cd, d2.
type quadric [10]float64

func buildHalfEdgeMesh(pos *document.Accessor, tris []int) *heMesh {
	m := &heMesh{
		verts:     make([][3]float32, pos.Count),
		vertAlive: make([]bool, pos.Count),
	}
	for i := 0; i < pos.Count; i++ {
		m.verts[i] = pos.Vec3At(i)
		m.vertAlive[i] = true
	}
	for t := 0; t+2 < len(tris); t += 3 {
		a, b, c := tris[t], tris[t+1], tris[t+2]
		if a == b || b == c || a == c {
			continue
		}
		m.tris = append(m.tris, [3]int{a, b, c})
		m.triAlive = append(m.triAlive, true)
	}
	return m
}

// weld merges vertices within eps of each other by snapping to a grid of
// cell size eps and picking the lowest-index vertex in each occupied cell
// as the representative. Degenerate triangles created by the merge are
// dropped.
func weld(m *heMesh, eps float32) {
	if eps <= 0 {
		return
	}
	type cellKey struct{ x, y, z int64 }
	cellOf := func(v [3]float32) cellKey {
		return cellKey{
			int64(math.Floor(float64(v[0] / eps))),
			int64(math.Floor(float64(v[1] / eps))),
			int64(math.Floor(float64(v[2] / eps))),
		}
	}
	rep := make(map[cellKey]int)
	remap := make([]int, len(m.verts))
	for i, v := range m.verts {
		key := cellOf(v)
		if r, ok := rep[key]; ok {
			remap[i] = r
		} else {
			rep[key] = i
			remap[i] = i
		}
	}
	for i := range m.verts {
		if remap[i] != i {
			m.vertAlive[i] = false
		}
	}
	for ti, tri := range m.tris {
		if !m.triAlive[ti] {
			continue
		}
		a, b, c := remap[tri[0]], remap[tri[1]], remap[tri[2]]
		if a == b || b == c || a == c {
			m.triAlive[ti] = false
			continue
		}
		m.tris[ti] = [3]int{a, b, c}
	}
}

func planeQuadric(p0, p1, p2 [3]float32) quadric {
	e1 := sub3(p1, p0)
	e2 := sub3(p2, p0)
	n := cross3(e1, e2)
	length := length3(n)
	if length < 1e-12 {
		return quadric{}
	}
	n = [3]float32{n[0] / length, n[1] / length, n[2] / length}
	d := -(n[0]*p0[0] + n[1]*p0[1] + n[2]*p0[2])
	a, b, c := float64(n[0]), float64(n[1]), float64(n[2])
	dd := float64(d)
	return quadric{a * a, a * b, a * c, a * dd, b * b, b * c, b * dd, c * c, c * dd, dd * dd}
}

func (q quadric) add(o quadric) quadric {
	for i := range q {
		q[i] += o[i]
	}
	return q
}

// evaluate returns v^T Q v for homogeneous point (x,y,z,1).
func (q quadric) evaluate(p [3]float32) float64 {
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
	return x*x*q[0] + 2*x*y*q[1] + 2*x*z*q[2] + 2*x*q[3] +
		y*y*q[4] + 2*y*z*q[5] + 2*y*q[6] +
		z*z*q[7] + 2*z*q[8] +
		q[9]
}

func sub3(a, b [3]float32) [3]float32 { return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}
func length3(v [3]float32) float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

func (m *heMesh) vertexQuadrics() []quadric {
	qs := make([]quadric, len(m.verts))
	for ti, tri := range m.tris {
		if !m.triAlive[ti] {
			continue
		}
		q := planeQuadric(m.verts[tri[0]], m.verts[tri[1]], m.verts[tri[2]])
		qs[tri[0]] = qs[tri[0]].add(q)
		qs[tri[1]] = qs[tri[1]].add(q)
		qs[tri[2]] = qs[tri[2]].add(q)
	}
	return qs
}

// boundaryVertices reports, for each vertex, whether it touches an edge
// used by exactly one live triangle (an open boundary edge).
func (m *heMesh) boundaryVertices() []bool {
	type edge struct{ a, b int }
	norm := func(a, b int) edge {
		if a > b {
			a, b = b, a
		}
		return edge{a, b}
	}
	counts := map[edge]int{}
	for ti, tri := range m.tris {
		if !m.triAlive[ti] {
			continue
		}
		counts[norm(tri[0], tri[1])]++
		counts[norm(tri[1], tri[2])]++
		counts[norm(tri[2], tri[0])]++
	}
	boundary := make([]bool, len(m.verts))
	for e, n := range counts {
		if n == 1 {
			boundary[e.a] = true
			boundary[e.b] = true
		}
	}
	return boundary
}

func (m *heMesh) liveTriangleCount() int {
	n := 0
	for _, alive := range m.triAlive {
		if alive {
			n++
		}
	}
	return n
}

// collapseToTarget repeatedly collapses the cheapest remaining edge
// (quadric error evaluated at the surviving vertex's position, a
// midpoint-free approximation) until the live triangle count reaches
// target, the cheapest available edge's cost exceeds errorTol scaled by
// the mesh's quadric magnitude, or no collapsible edge remains.
func collapseToTarget(m *heMesh, target int, errorTol float32, lockBorder bool) {
	if m.liveTriangleCount() <= target {
		return
	}

	for m.liveTriangleCount() > target {
		quadrics := m.vertexQuadrics()
		var boundary []bool
		if lockBorder {
			boundary = m.boundaryVertices()
		}

		type candidate struct {
			a, b int
			cost float64
		}
		best := candidate{-1, -1, math.Inf(1)}

		seen := map[[2]int]bool{}
		for ti, tri := range m.tris {
			if !m.triAlive[ti] {
				continue
			}
			edges := [3][2]int{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]}}
			for _, e := range edges {
				a, b := e[0], e[1]
				if a > b {
					a, b = b, a
				}
				if seen[[2]int{a, b}] {
					continue
				}
				seen[[2]int{a, b}] = true
				if lockBorder && (boundary[a] || boundary[b]) {
					continue
				}
				merged := quadrics[a].add(quadrics[b])
				cost := merged.evaluate(m.verts[a])
				if cost < best.cost {
					best = candidate{a, b, cost}
				}
			}
		}

		if best.a < 0 {
			return // nothing left to collapse (everything is a locked boundary, or mesh is empty)
		}
		if errorTol > 0 && best.cost > float64(errorTol)*meshScale(m) {
			return
		}

		collapseEdge(m, best.a, best.b)
	}
}

func meshScale(m *heMesh) float64 {
	var min, max [3]float32
	first := true
	for i, alive := range m.vertAlive {
		if !alive {
			continue
		}
		v := m.verts[i]
		if first {
			min, max = v, v
			first = false
			continue
		}
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	d := length3(sub3(max, min))
	scale := float64(d) * float64(d)
	if scale < 1e-12 {
		return 1
	}
	return scale
}

// collapseEdge merges vertex b into vertex a: every triangle referencing
// b now references a, triangles that degenerate as a result are killed,
// and b is marked dead.
func collapseEdge(m *heMesh, a, b int) {
	for ti, tri := range m.tris {
		if !m.triAlive[ti] {
			continue
		}
		changed := false
		for k := 0; k < 3; k++ {
			if tri[k] == b {
				tri[k] = a
				changed = true
			}
		}
		if !changed {
			continue
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			m.triAlive[ti] = false
			continue
		}
		m.tris[ti] = tri
	}
	m.vertAlive[b] = false
}

// compact rebuilds a dense vertex/triangle representation over only the
// live vertices and triangles, returning the new POSITION accessor, the
// flat triangle index list, and an old-index -> new-index remap (-1 for
// vertices that did not survive) for remapAttribute to follow.
func (m *heMesh) compact() (*document.Accessor, []int, []int) {
	remap := make([]int, len(m.verts))
	var data []float32
	next := 0
	for i, alive := range m.vertAlive {
		if !alive {
			remap[i] = -1
			continue
		}
		remap[i] = next
		next++
		data = append(data, m.verts[i][0], m.verts[i][1], m.verts[i][2])
	}

	var tris []int
	for ti, tri := range m.tris {
		if !m.triAlive[ti] {
			continue
		}
		tris = append(tris, remap[tri[0]], remap[tri[1]], remap[tri[2]])
	}

	pos := &document.Accessor{
		ComponentType: document.ComponentFloat,
		Type:          document.TypeVec3,
		Count:         next,
		Data:          data,
	}
	return pos, tris, remap
}
