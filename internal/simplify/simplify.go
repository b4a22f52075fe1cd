// Package simplify implements the mesh simplifier (the "simplify"
// pipeline step): a weld pre-pass followed by quadric-error-metric edge
// collapse down to a target triangle ratio or count, honoring an error
// tolerance and an optional open-boundary lock. Primitives are
// independent write sets, so the per-primitive passes fan out across the
// shared worker pool per the concurrency model (spec §5).
package simplify

import (
	"context"
	"fmt"
	"math"

	"github.com/gltfpipe/glboptimize/document"
	"github.com/gltfpipe/glboptimize/internal/perr"
	"github.com/gltfpipe/glboptimize/internal/workerpool"
)

// Options configures one simplify invocation. Exactly one of TargetRatio
// and TargetCount may be set.
type Options struct {
	TargetRatio *float32
	TargetCount *int
	Error       *float32
	LockBorder  bool
}

func (o Options) errorTolerance() float32 {
	if o.Error == nil {
		return 0.01
	}
	return *o.Error
}

// Validate checks Options against the step's documented error conditions.
// All failures are reported as InvalidOptions and leave the document
// untouched — the caller has not mutated anything yet at validation time.
func (o Options) Validate() error {
	if o.TargetRatio != nil && o.TargetCount != nil {
		return perr.InvalidOptionsErr(fmt.Errorf("targetRatio and targetCount are mutually exclusive"))
	}
	if o.TargetRatio == nil && o.TargetCount == nil {
		return perr.InvalidOptionsErr(fmt.Errorf("one of targetRatio or targetCount is required"))
	}
	if o.TargetRatio != nil {
		r := *o.TargetRatio
		if r <= 0 || r > 1 {
			return perr.InvalidOptions("targetRatio", "(0, 1]", fmt.Sprintf("%v", r))
		}
	}
	if o.TargetCount != nil {
		c := *o.TargetCount
		if c <= 0 {
			return perr.InvalidOptions("targetCount", "positive integer", fmt.Sprintf("%v", c))
		}
	}
	e := o.errorTolerance()
	if e < 0 || e > 1 {
		return perr.InvalidOptions("error", "[0, 1]", fmt.Sprintf("%v", e))
	}
	return nil
}

// Stats reports the aggregate effect of a Simplify call across every
// primitive processed.
type Stats struct {
	OriginalTriangles   int
	SimplifiedTriangles int
	ReductionRatio      float32
	MeshesProcessed     int
}

// Simplify runs the weld + quadric-error-collapse pass over every
// triangle primitive in the document, fanning the per-primitive work out
// across pool. Non-triangle primitives pass through unchanged.
func Simplify(ctx context.Context, d *document.Document, opts Options, pool *workerpool.Pool) (*Stats, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	type job struct {
		primitive *document.Primitive
	}
	var jobs []job
	for _, mesh := range d.Meshes {
		for _, p := range mesh.Primitives {
			if p.Mode != document.ModeTriangles {
				continue
			}
			jobs = append(jobs, job{p})
		}
	}

	results := make([]primResult, len(jobs))
	tasks := make([]workerpool.Task, len(jobs))
	for i, j := range jobs {
		i, j := i, j
		tasks[i] = func() error {
			res, err := simplifyPrimitive(d, j.primitive, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		}
	}
	if err := pool.RunAll(ctx, tasks); err != nil {
		return nil, perr.OptimizationFailed("simplify", err)
	}

	stats := &Stats{}
	for _, r := range results {
		stats.OriginalTriangles += r.original
		stats.SimplifiedTriangles += r.simplified
		if r.processed {
			stats.MeshesProcessed++
		}
	}
	if stats.OriginalTriangles > 0 {
		stats.ReductionRatio = float32(stats.SimplifiedTriangles) / float32(stats.OriginalTriangles)
	} else {
		stats.ReductionRatio = 1
	}
	return stats, nil
}

type primResult struct {
	original   int
	simplified int
	processed  bool
}

func simplifyPrimitive(d *document.Document, p *document.Primitive, opts Options) (primResult, error) {
	posIdx, ok := p.Attributes[document.SemanticPosition]
	if !ok {
		return primResult{}, nil
	}
	pos := d.Accessors[posIdx]
	tris := triangleList(d, p, pos.Count)
	originalTriCount := len(tris) / 3
	if originalTriCount == 0 {
		return primResult{processed: true}, nil
	}

	mesh := buildHalfEdgeMesh(pos, tris)
	weld(mesh, weldEpsilon(pos))

	targetTris := originalTriCount
	if opts.TargetRatio != nil {
		targetTris = int(math.Round(float64(*opts.TargetRatio) * float64(originalTriCount)))
	} else {
		targetTris = *opts.TargetCount
	}
	if targetTris < 1 {
		targetTris = 1
	}

	collapseToTarget(mesh, targetTris, opts.errorTolerance(), opts.LockBorder)

	rewritePrimitive(d, p, mesh)

	return primResult{
		original:   originalTriCount,
		simplified: mesh.liveTriangleCount(),
		processed:  true,
	}, nil
}

func triangleList(d *document.Document, p *document.Primitive, vertexCount int) []int {
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

// weldEpsilon derives a small relative epsilon from the primitive's
// bounding-box diagonal (spec §9 open question: "a small fixed relative
// epsilon derived from the bounding box").
func weldEpsilon(pos *document.Accessor) float32 {
	if pos.Count == 0 {
		return 1e-5
	}
	min, max := pos.Vec3At(0), pos.Vec3At(0)
	for i := 1; i < pos.Count; i++ {
		v := pos.Vec3At(i)
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	diag := math.Sqrt(float64(max[0]-min[0])*float64(max[0]-min[0]) +
		float64(max[1]-min[1])*float64(max[1]-min[1]) +
		float64(max[2]-min[2])*float64(max[2]-min[2]))
	return float32(diag * 1e-5)
}

func rewritePrimitive(d *document.Document, p *document.Primitive, mesh *heMesh) {
	newPos, newTris, vertexRemap := mesh.compact()

	posIdx := p.Attributes[document.SemanticPosition]
	d.Accessors[posIdx] = newPos

	for sem, idx := range p.Attributes {
		if sem == document.SemanticPosition {
			continue
		}
		a := d.Accessors[idx]
		d.Accessors[idx] = remapAttribute(a, vertexRemap, len(newPos.Data)/3)
	}

	idxData := make([]float32, len(newTris))
	for i, v := range newTris {
		idxData[i] = float32(v)
	}
	idxAcc := &document.Accessor{
		ComponentType: document.ComponentUnsignedInt,
		Type:          document.TypeScalar,
		Count:         len(idxData),
		Data:          idxData,
	}
	if p.Indices >= 0 {
		d.Accessors[p.Indices] = idxAcc
	} else {
		d.Accessors = append(d.Accessors, idxAcc)
		p.Indices = len(d.Accessors) - 1
	}
}

// remapAttribute re-derives an attribute accessor for the surviving,
// welded vertex set. Since welding can merge several original vertices
// (each possibly carrying a distinct normal/UV) into one position, the
// surviving vertex keeps whichever source attribute value belonged to the
// representative vertex the weld chose — an approximation acceptable at
// the precision this step already trades away.
func remapAttribute(a *document.Accessor, remap []int, newCount int) *document.Accessor {
	comps := a.Type.ComponentCount()
	out := &document.Accessor{
		ComponentType: a.ComponentType,
		Type:          a.Type,
		Normalized:    a.Normalized,
		Count:         newCount,
		Data:          make([]float32, newCount*comps),
	}
	seen := make([]bool, newCount)
	for oldIdx, newIdx := range remap {
		if newIdx < 0 || seen[newIdx] || oldIdx >= a.Count {
			continue
		}
		seen[newIdx] = true
		copy(out.Data[newIdx*comps:(newIdx+1)*comps], a.Data[oldIdx*comps:(oldIdx+1)*comps])
	}
	return out
}
