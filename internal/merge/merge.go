// Package merge implements the mesh joiner (the "merge" pipeline step):
// it combines primitives that share an effective material into fewer
// draw units per mesh, following the same processor shape as a classic
// OBJ-merge pass — group by material, concatenate vertex data, leave
// incompatible layouts alone.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gltfpipe/glboptimize/document"
)

// Stats reports how many draw units merge collapsed.
type Stats struct {
	OriginalMeshCount int
	MergedMeshCount   int
	MeshesReduced     int
}

// Processor applies the merge step to a document, following the
// Name/Desc/Execute shape of a single-purpose mesh-processing pass.
type Processor struct{}

// New returns a merge Processor.
func New() *Processor { return &Processor{} }

// Name identifies this processor.
func (p *Processor) Name() string { return "merge" }

// Desc describes what this processor does.
func (p *Processor) Desc() string {
	return "merges primitives sharing an effective material into fewer draw units"
}

// Execute runs the merge step in place and returns its stats. Materials
// themselves are never removed by this step; only primitive count
// changes.
func (p *Processor) Execute(d *document.Document) (*Stats, error) {
	stats := &Stats{}
	for _, mesh := range d.Meshes {
		stats.OriginalMeshCount += len(mesh.Primitives)
		merged, err := mergeMeshPrimitives(d, mesh.Primitives)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		mesh.Primitives = merged
		stats.MergedMeshCount += len(merged)
	}
	stats.MeshesReduced = stats.OriginalMeshCount - stats.MergedMeshCount
	return stats, nil
}

func mergeMeshPrimitives(d *document.Document, prims []*document.Primitive) ([]*document.Primitive, error) {
	var order []string
	groups := map[string][]*document.Primitive{}
	var leftAlone []*document.Primitive

	for _, p := range prims {
		if p.Material < 0 {
			leftAlone = append(leftAlone, p)
			continue
		}
		key := signature(d, p)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	out := append([]*document.Primitive{}, leftAlone...)
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		out = append(out, mergeGroup(d, group))
	}
	return out, nil
}

// signature groups primitives that can be safely concatenated: same
// material, same topology mode, and an identical attribute layout
// (semantic set plus each accessor's component type).
func signature(d *document.Document, p *document.Primitive) string {
	sems := make([]string, 0, len(p.Attributes))
	for sem := range p.Attributes {
		sems = append(sems, sem)
	}
	sort.Strings(sems)

	var b strings.Builder
	fmt.Fprintf(&b, "m%d|mode%d|", p.Material, p.Mode)
	for _, sem := range sems {
		a := d.Accessors[p.Attributes[sem]]
		fmt.Fprintf(&b, "%s:%d:%s;", sem, a.ComponentType, a.Type)
	}
	return b.String()
}

func mergeGroup(d *document.Document, group []*document.Primitive) *document.Primitive {
	first := group[0]

	sems := make([]string, 0, len(first.Attributes))
	for sem := range first.Attributes {
		sems = append(sems, sem)
	}

	mergedAttrs := make(map[string]int, len(sems))
	for _, sem := range sems {
		mergedAttrs[sem] = appendAccessor(d, group, sem)
	}

	mergedIndices := appendIndices(d, group)

	return &document.Primitive{
		Attributes: mergedAttrs,
		Indices:    mergedIndices,
		Material:   first.Material,
		Mode:       first.Mode,
	}
}

func appendAccessor(d *document.Document, group []*document.Primitive, semantic string) int {
	first := d.Accessors[group[0].Attributes[semantic]]
	merged := &document.Accessor{
		ComponentType: first.ComponentType,
		Type:          first.Type,
		Normalized:    first.Normalized,
	}
	for _, p := range group {
		a := d.Accessors[p.Attributes[semantic]]
		merged.Data = append(merged.Data, a.Data...)
		merged.Count += a.Count
	}
	d.Accessors = append(d.Accessors, merged)
	return len(d.Accessors) - 1
}

// appendIndices concatenates each primitive's triangle indices, offsetting
// by the running vertex count so far. Unindexed primitives are treated as
// sequential 0..count-1 over their own POSITION accessor.
func appendIndices(d *document.Document, group []*document.Primitive) int {
	merged := &document.Accessor{
		ComponentType: document.ComponentUnsignedInt,
		Type:          document.TypeScalar,
	}
	vertexOffset := 0
	for _, p := range group {
		posIdx, ok := p.Attributes[document.SemanticPosition]
		vertexCount := 0
		if ok {
			vertexCount = d.Accessors[posIdx].Count
		}

		if p.Indices >= 0 {
			idxAcc := d.Accessors[p.Indices]
			for i := 0; i < idxAcc.Count; i++ {
				merged.Data = append(merged.Data, float32(idxAcc.IndexAt(i)+vertexOffset))
			}
			merged.Count += idxAcc.Count
		} else {
			for i := 0; i < vertexCount; i++ {
				merged.Data = append(merged.Data, float32(i+vertexOffset))
			}
			merged.Count += vertexCount
		}
		vertexOffset += vertexCount
	}
	d.Accessors = append(d.Accessors, merged)
	return len(d.Accessors) - 1
}
