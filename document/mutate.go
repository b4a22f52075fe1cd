package document

// The pruner and the sanitizer's empty-accessor disposal are the only
// callers that renumber entities (the joiner only appends new accessors),
// so the index-compaction helpers they need live here rather than in
// either package. Each Remove* returns the number of entities actually
// removed and rewrites every cross-reference in the document to the
// compacted indices.

// remapIndex builds an old-index -> new-index table for a set of entities
// being dropped, preserving relative order among the survivors.
func remapIndex(n int, drop map[int]bool) (remap []int, kept int) {
	remap = make([]int, n)
	next := 0
	for i := 0; i < n; i++ {
		if drop[i] {
			remap[i] = -1
			continue
		}
		remap[i] = next
		next++
	}
	return remap, next
}

// RemoveAccessors drops the accessors at the given indices and rewrites
// every primitive/skin/animation reference to the compacted indices.
func (d *Document) RemoveAccessors(drop map[int]bool) int {
	if len(drop) == 0 {
		return 0
	}
	remap, kept := remapIndex(len(d.Accessors), drop)
	compacted := make([]*Accessor, kept)
	for i, a := range d.Accessors {
		if remap[i] >= 0 {
			compacted[remap[i]] = a
		}
	}

	for _, mesh := range d.Meshes {
		for _, p := range mesh.Primitives {
			for sem, idx := range p.Attributes {
				if remap[idx] < 0 {
					delete(p.Attributes, sem)
					continue
				}
				p.Attributes[sem] = remap[idx]
			}
			if p.Indices >= 0 {
				p.Indices = remap[p.Indices]
			}
		}
	}
	for _, s := range d.Skins {
		if s.InverseBindMatrices >= 0 {
			s.InverseBindMatrices = remap[s.InverseBindMatrices]
		}
	}
	for _, a := range d.Animations {
		for i := range a.Samplers {
			a.Samplers[i].Input = remap[a.Samplers[i].Input]
			a.Samplers[i].Output = remap[a.Samplers[i].Output]
		}
	}

	removed := len(d.Accessors) - kept
	d.Accessors = compacted
	return removed
}

// RemoveTextures drops the textures at the given indices and rewrites
// every material's texture-slot references to the compacted indices.
func (d *Document) RemoveTextures(drop map[int]bool) int {
	if len(drop) == 0 {
		return 0
	}
	remap, kept := remapIndex(len(d.Textures), drop)
	compacted := make([]*Texture, kept)
	for i, t := range d.Textures {
		if remap[i] >= 0 {
			compacted[remap[i]] = t
		}
	}
	remapSlot := func(idx int) int {
		if idx < 0 {
			return -1
		}
		return remap[idx]
	}
	for _, m := range d.Materials {
		m.BaseColorTexture = remapSlot(m.BaseColorTexture)
		m.MetallicRoughnessTexture = remapSlot(m.MetallicRoughnessTexture)
		m.NormalTexture = remapSlot(m.NormalTexture)
		m.OcclusionTexture = remapSlot(m.OcclusionTexture)
		m.EmissiveTexture = remapSlot(m.EmissiveTexture)
	}
	removed := len(d.Textures) - kept
	d.Textures = compacted
	return removed
}

// RemoveMaterials drops the materials at the given indices and rewrites
// every primitive's material reference to the compacted indices.
func (d *Document) RemoveMaterials(drop map[int]bool) int {
	if len(drop) == 0 {
		return 0
	}
	remap, kept := remapIndex(len(d.Materials), drop)
	compacted := make([]*Material, kept)
	for i, m := range d.Materials {
		if remap[i] >= 0 {
			compacted[remap[i]] = m
		}
	}
	for _, mesh := range d.Meshes {
		for _, p := range mesh.Primitives {
			if p.Material >= 0 {
				p.Material = remap[p.Material]
			}
		}
	}
	removed := len(d.Materials) - kept
	d.Materials = compacted
	return removed
}

// RemoveNodes drops the nodes at the given indices and rewrites every
// scene's root list and every remaining node's children list to the
// compacted indices; references to dropped nodes are removed from those
// lists. A dropped node's own children are not re-parented, so the
// pruner only ever drops childless leaves.
func (d *Document) RemoveNodes(drop map[int]bool) int {
	if len(drop) == 0 {
		return 0
	}
	remap, kept := remapIndex(len(d.Nodes), drop)
	compacted := make([]*Node, kept)
	for i, n := range d.Nodes {
		if remap[i] < 0 {
			continue
		}
		filtered := n.Children[:0:0]
		for _, c := range n.Children {
			if remap[c] >= 0 {
				filtered = append(filtered, remap[c])
			}
		}
		n.Children = filtered
		compacted[remap[i]] = n
	}
	for _, s := range d.Scenes {
		filtered := s.Nodes[:0:0]
		for _, n := range s.Nodes {
			if remap[n] >= 0 {
				filtered = append(filtered, remap[n])
			}
		}
		s.Nodes = filtered
	}
	removed := len(d.Nodes) - kept
	d.Nodes = compacted
	return removed
}

// RemoveMeshes drops the meshes at the given indices and rewrites every
// node's mesh reference to the compacted indices (-1 if it pointed at a
// dropped mesh).
func (d *Document) RemoveMeshes(drop map[int]bool) int {
	if len(drop) == 0 {
		return 0
	}
	remap, kept := remapIndex(len(d.Meshes), drop)
	compacted := make([]*Mesh, kept)
	for i, m := range d.Meshes {
		if remap[i] >= 0 {
			compacted[remap[i]] = m
		}
	}
	for _, n := range d.Nodes {
		if n.Mesh < 0 {
			continue
		}
		if remap[n.Mesh] < 0 {
			n.Mesh = -1
		} else {
			n.Mesh = remap[n.Mesh]
		}
	}
	removed := len(d.Meshes) - kept
	d.Meshes = compacted
	return removed
}
