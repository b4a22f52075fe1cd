package document

// Reachable is the result of walking the document's default-scene graph:
// the set of entity indices, per kind, that something besides the root
// still refers to. The pruner and sanitizer both need "who references
// this?" (spec §9 "Graph cycles and parent-back-references"); rather than
// maintaining a standing reverse index that needs invalidation on every
// mutation, this package recomputes it on demand — steps run sequentially
// and graphs here are small enough that a fresh walk per call is cheap
// and never stale.
type Reachable struct {
	Nodes     map[int]bool
	Meshes    map[int]bool
	Materials map[int]bool
	Textures  map[int]bool
	Accessors map[int]bool
	Skins     map[int]bool
}

// Walk computes the reachable set starting from the document's default
// scene. If the document has no default scene, every set is empty.
func (d *Document) Walk() *Reachable {
	r := &Reachable{
		Nodes:     map[int]bool{},
		Meshes:    map[int]bool{},
		Materials: map[int]bool{},
		Textures:  map[int]bool{},
		Accessors: map[int]bool{},
		Skins:     map[int]bool{},
	}
	if d.DefaultScene < 0 || d.DefaultScene >= len(d.Scenes) {
		return r
	}
	scene := d.Scenes[d.DefaultScene]
	for _, n := range scene.Nodes {
		d.walkNode(n, r)
	}
	return r
}

func (d *Document) walkNode(idx int, r *Reachable) {
	if idx < 0 || idx >= len(d.Nodes) || r.Nodes[idx] {
		return
	}
	r.Nodes[idx] = true
	n := d.Nodes[idx]

	if n.Mesh >= 0 && n.Mesh < len(d.Meshes) {
		r.Meshes[n.Mesh] = true
		d.walkMesh(n.Mesh, r)
	}
	if n.Skin >= 0 && n.Skin < len(d.Skins) {
		r.Skins[n.Skin] = true
		skin := d.Skins[n.Skin]
		if skin.InverseBindMatrices >= 0 {
			r.Accessors[skin.InverseBindMatrices] = true
		}
	}
	for _, c := range n.Children {
		d.walkNode(c, r)
	}
}

func (d *Document) walkMesh(idx int, r *Reachable) {
	mesh := d.Meshes[idx]
	for _, p := range mesh.Primitives {
		for _, accIdx := range p.Attributes {
			r.Accessors[accIdx] = true
		}
		if p.Indices >= 0 {
			r.Accessors[p.Indices] = true
		}
		if p.Material >= 0 && p.Material < len(d.Materials) {
			r.Materials[p.Material] = true
			d.walkMaterialTextures(p.Material, r)
		}
	}
}

func (d *Document) walkMaterialTextures(idx int, r *Reachable) {
	m := d.Materials[idx]
	for _, tex := range []int{m.BaseColorTexture, m.MetallicRoughnessTexture, m.NormalTexture, m.OcclusionTexture, m.EmissiveTexture} {
		if tex >= 0 && tex < len(d.Textures) {
			r.Textures[tex] = true
		}
	}
}

// HasOtherReferrers reports whether any primitive, skin, or animation
// sampler other than the root references accessor idx (spec §3 invariant
// 6). Unlike Walk, this check is not scoped to the default scene — an
// accessor kept alive only by a non-default scene, or by an animation,
// still has a referrer and must not be disposed by the sanitizer.
func (d *Document) HasOtherReferrers(idx int) bool {
	for _, mesh := range d.Meshes {
		for _, p := range mesh.Primitives {
			for _, accIdx := range p.Attributes {
				if accIdx == idx {
					return true
				}
			}
			if p.Indices == idx {
				return true
			}
		}
	}
	for _, s := range d.Skins {
		if s.InverseBindMatrices == idx {
			return true
		}
	}
	for _, a := range d.Animations {
		for _, samp := range a.Samplers {
			if samp.Input == idx || samp.Output == idx {
				return true
			}
		}
	}
	return false
}
