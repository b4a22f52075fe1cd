// Package prune implements the resource pruner (the "clean" pipeline
// step): it removes materials, textures, and accessors nothing in the
// default scene still references, and optionally collapses empty leaf
// nodes out of the scene graph. It must run single-threaded — it
// restructures the entity graph, which the concurrency model (spec §5)
// explicitly forbids fanning out over.
package prune

import "github.com/gltfpipe/glboptimize/document"

// Options configures the pruner. Unspecified (nil) fields default to
// true, matching the "unspecified fields default to true" rule for this
// step's config table.
type Options struct {
	RemoveUnusedNodes     *bool
	RemoveUnusedMaterials *bool
	RemoveUnusedTextures  *bool
}

func (o Options) removeNodes() bool     { return boolOrDefault(o.RemoveUnusedNodes, true) }
func (o Options) removeMaterials() bool { return boolOrDefault(o.RemoveUnusedMaterials, true) }
func (o Options) removeTextures() bool  { return boolOrDefault(o.RemoveUnusedTextures, true) }

func boolOrDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Stats reports the count delta across a Clean call.
type Stats struct {
	NodesRemoved     int
	MaterialsRemoved int
	TexturesRemoved  int
	MeshesRemoved    int
}

// Clean computes the document's reachable set from the default scene and
// removes unreferenced accessors and meshes unconditionally, plus
// materials and textures when their respective options are enabled (the
// unconditional wording in the source spec applies to accessors/buffers;
// glTF has no standalone buffer entity here — see document.Buffer's
// absence — so accessor and mesh disposal stand in for it, since a mesh
// no node points at is exactly as dead as an accessor nothing points at).
// If RemoveUnusedNodes is set, empty leaf nodes (no mesh/skin/camera/light,
// no children) are also collapsed, iterating until the graph stabilizes
// since removing a leaf can make its former parent empty in turn.
func Clean(d *document.Document, opts Options) *Stats {
	stats := &Stats{}

	reach := d.Walk()

	if opts.removeMaterials() {
		drop := unreferenced(len(d.Materials), reach.Materials)
		stats.MaterialsRemoved = d.RemoveMaterials(drop)
	}
	if opts.removeTextures() {
		reach = d.Walk()
		drop := unreferenced(len(d.Textures), reach.Textures)
		stats.TexturesRemoved = d.RemoveTextures(drop)
	}

	reach = d.Walk()
	meshDrop := unreferenced(len(d.Meshes), reach.Meshes)
	stats.MeshesRemoved = d.RemoveMeshes(meshDrop)

	reach = d.Walk()
	accDrop := unreferencedAccessors(d, reach.Accessors)
	d.RemoveAccessors(accDrop)

	if opts.removeNodes() {
		stats.NodesRemoved = collapseEmptyLeaves(d)
	}

	return stats
}

func unreferenced(total int, used map[int]bool) map[int]bool {
	drop := map[int]bool{}
	for i := 0; i < total; i++ {
		if !used[i] {
			drop[i] = true
		}
	}
	return drop
}

// unreferencedAccessors additionally consults HasOtherReferrers so an
// accessor only reachable through a non-default scene, a skin, or an
// animation is not dropped out from under it.
func unreferencedAccessors(d *document.Document, used map[int]bool) map[int]bool {
	drop := map[int]bool{}
	for i := range d.Accessors {
		if used[i] {
			continue
		}
		if d.HasOtherReferrers(i) {
			continue
		}
		drop[i] = true
	}
	return drop
}

func collapseEmptyLeaves(d *document.Document) int {
	total := 0
	for {
		reach := d.Walk()
		drop := map[int]bool{}
		for idx := range reach.Nodes {
			n := d.Nodes[idx]
			if n.Mesh < 0 && n.Skin < 0 && !n.HasCamera && !n.HasLight && len(n.Children) == 0 {
				drop[idx] = true
			}
		}
		if len(drop) == 0 {
			return total
		}
		total += d.RemoveNodes(drop)
	}
}
