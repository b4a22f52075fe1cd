package document

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Read parses a glTF-2.0 binary container at path into a Document.
// Mirrors the teacher's gltfParserImpl.Parse / parseGLB split
// (engine/loader/gltf_parser.go) but decodes directly into the mutable
// graph this package exposes, rather than into a render-ready model.
func Read(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("document: stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, ErrTooLarge
	}

	return ReadReader(f, info.Size())
}

// ReadReader parses a glTF-2.0 binary container from r. size is not
// consulted: ReadReader reads at most MaxFileSize+1 bytes from r and
// returns ErrTooLarge when r yields more than MaxFileSize.
func ReadReader(r io.Reader, size int64) (*Document, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("document: read: %w", err)
	}
	if int64(len(raw)) > MaxFileSize {
		return nil, ErrTooLarge
	}
	return parseGLB(raw)
}

func parseGLB(raw []byte) (*Document, error) {
	if len(raw) < 12 {
		return nil, ErrTooSmall
	}

	magic := binary.LittleEndian.Uint32(raw[0:4])
	version := binary.LittleEndian.Uint32(raw[4:8])
	length := binary.LittleEndian.Uint32(raw[8:12])

	if magic != glbMagic {
		return nil, ErrBadMagic
	}
	if version != glbVersion {
		return nil, ErrBadVersion
	}
	if int(length) != len(raw) {
		return nil, ErrLengthMismatch
	}

	var jsonChunk, binChunk []byte
	offset := 12
	for offset < len(raw) {
		if offset+8 > len(raw) {
			return nil, ErrTruncatedChunk
		}
		chunkLen := binary.LittleEndian.Uint32(raw[offset : offset+4])
		chunkType := binary.LittleEndian.Uint32(raw[offset+4 : offset+8])
		start := offset + 8
		end := start + int(chunkLen)
		if end > len(raw) {
			return nil, ErrTruncatedChunk
		}
		switch chunkType {
		case chunkTypeJSON:
			jsonChunk = raw[start:end]
		case chunkTypeBIN:
			binChunk = raw[start:end]
		}
		offset = end
	}

	if jsonChunk == nil {
		return nil, ErrMissingJSONChunk
	}

	var g gltfJSON
	if err := json.Unmarshal(jsonChunk, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}

	return buildDocument(&g, binChunk)
}

func buildDocument(g *gltfJSON, bin []byte) (*Document, error) {
	d := NewDocument()
	d.Generator = g.Asset.Generator
	d.Copyright = g.Asset.Copyright

	for _, e := range g.ExtensionsUsed {
		d.UsedExtensions[e] = true
	}
	for _, e := range g.ExtensionsRequired {
		d.RequiredExtensions[e] = true
	}

	buffers := make([][]byte, len(g.Buffers))
	for i, b := range g.Buffers {
		if b.URI == "" {
			buffers[i] = bin
			continue
		}
		return nil, fmt.Errorf("document: external buffer URIs are not supported: %q", b.URI)
	}

	accessors := make([]*Accessor, len(g.Accessors))
	for i, ga := range g.Accessors {
		a, err := decodeAccessor(&ga, g.BufferViews, buffers)
		if err != nil {
			return nil, fmt.Errorf("document: accessor %d: %w", i, err)
		}
		accessors[i] = a
	}
	d.Accessors = accessors

	d.Textures = make([]*Texture, len(g.Textures))
	for i, gt := range g.Textures {
		tex := &Texture{}
		if gt.Source != nil && *gt.Source < len(g.Images) {
			img := g.Images[*gt.Source]
			tex.Name = img.Name
			tex.MimeType = img.MimeType
			if img.BufferView != nil {
				bv := g.BufferViews[*img.BufferView]
				buf := buffers[bv.Buffer]
				tex.Data = append([]byte(nil), buf[bv.ByteOffset:bv.ByteOffset+bv.ByteLength]...)
			}
		}
		d.Textures[i] = tex
	}

	d.Materials = make([]*Material, len(g.Materials))
	for i, gm := range g.Materials {
		d.Materials[i] = decodeMaterial(&gm)
	}

	d.Meshes = make([]*Mesh, len(g.Meshes))
	for i, gmesh := range g.Meshes {
		mesh := &Mesh{Name: gmesh.Name}
		for _, gp := range gmesh.Primitives {
			p := &Primitive{
				Attributes: gp.Attributes,
				Indices:    -1,
				Material:   -1,
				Mode:       ModeTriangles,
			}
			if gp.Indices != nil {
				p.Indices = *gp.Indices
			}
			if gp.Material != nil {
				p.Material = *gp.Material
			}
			if gp.Mode != nil {
				p.Mode = *gp.Mode
			}
			mesh.Primitives = append(mesh.Primitives, p)
		}
		d.Meshes[i] = mesh
	}

	d.Nodes = make([]*Node, len(g.Nodes))
	for i, gn := range g.Nodes {
		n := &Node{
			Name:        gn.Name,
			Children:    gn.Children,
			Mesh:        -1,
			Skin:        -1,
			Scale:       [3]float32{1, 1, 1},
			Rotation:    [4]float32{0, 0, 0, 1},
			Translation: gn.Translation,
		}
		if gn.Scale != [3]float32{} {
			n.Scale = gn.Scale
		}
		if gn.Rotation != [4]float32{} {
			n.Rotation = gn.Rotation
		}
		if gn.Mesh != nil {
			n.Mesh = *gn.Mesh
		}
		if gn.Skin != nil {
			n.Skin = *gn.Skin
		}
		if gn.Camera != nil {
			n.HasCamera = true
		}
		d.Nodes[i] = n
	}

	d.Scenes = make([]*Scene, len(g.Scenes))
	for i, gs := range g.Scenes {
		d.Scenes[i] = &Scene{Name: gs.Name, Nodes: gs.Nodes}
	}
	if g.Scene != nil {
		d.DefaultScene = *g.Scene
	} else if len(d.Scenes) > 0 {
		d.DefaultScene = 0
	}

	d.Skins = make([]*Skin, len(g.Skins))
	for i, gs := range g.Skins {
		s := &Skin{Name: gs.Name, Joints: gs.Joints, InverseBindMatrices: -1}
		if gs.InverseBindMatrices != nil {
			s.InverseBindMatrices = *gs.InverseBindMatrices
		}
		d.Skins[i] = s
	}

	d.Animations = make([]*Animation, len(g.Animations))
	for i, ga := range g.Animations {
		anim := &Animation{Name: ga.Name}
		for _, gsamp := range ga.Samplers {
			anim.Samplers = append(anim.Samplers, AnimationSampler{Input: gsamp.Input, Output: gsamp.Output})
		}
		d.Animations[i] = anim
	}

	return d, nil
}

func decodeMaterial(gm *gltfMaterial) *Material {
	m := &Material{
		Name:                     gm.Name,
		BaseColorFactor:          [4]float32{1, 1, 1, 1},
		MetallicFactor:           1,
		RoughnessFactor:          1,
		EmissiveFactor:           gm.EmissiveFactor,
		BaseColorTexture:         -1,
		MetallicRoughnessTexture: -1,
		NormalTexture:            -1,
		OcclusionTexture:         -1,
		EmissiveTexture:          -1,
		AlphaMode:                gm.AlphaMode,
		DoubleSided:              gm.DoubleSided,
	}
	if m.AlphaMode == "" {
		m.AlphaMode = "OPAQUE"
	}
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != [4]float32{} {
			m.BaseColorFactor = pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			m.MetallicFactor = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			m.RoughnessFactor = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			m.BaseColorTexture = pbr.BaseColorTexture.Index
		}
		if pbr.MetallicRoughnessTexture != nil {
			m.MetallicRoughnessTexture = pbr.MetallicRoughnessTexture.Index
		}
	}
	if gm.NormalTexture != nil {
		m.NormalTexture = gm.NormalTexture.Index
	}
	if gm.OcclusionTexture != nil {
		m.OcclusionTexture = gm.OcclusionTexture.Index
	}
	if gm.EmissiveTexture != nil {
		m.EmissiveTexture = gm.EmissiveTexture.Index
	}
	return m
}

func decodeAccessor(ga *gltfAccessor, views []gltfBufferView, buffers [][]byte) (*Accessor, error) {
	at := AccessorType(ga.Type)
	ct := ComponentType(ga.ComponentType)
	comps := at.ComponentCount()
	if comps == 0 {
		return nil, fmt.Errorf("document: unknown accessor type %q", ga.Type)
	}

	a := &Accessor{
		ComponentType: ct,
		Type:          at,
		Count:         ga.Count,
		Normalized:    ga.Normalized,
		Min:           ga.Min,
		Max:           ga.Max,
		Data:          make([]float32, ga.Count*comps),
	}

	if ga.BufferView == nil {
		// No backing storage: a sparse-only or placeholder accessor.
		// Sparse accessors themselves are out of scope (ErrUnsupportedSparse
		// is returned explicitly only when sparse data is present, which
		// the current JSON schema does not surface, so an empty accessor
		// is the safe degenerate case here).
		return a, nil
	}
	if *ga.BufferView < 0 || *ga.BufferView >= len(views) {
		return nil, ErrBadAccessorRef
	}
	bv := views[*ga.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(buffers) {
		return nil, ErrBadBufferView
	}
	buf := buffers[bv.Buffer]
	base := bv.ByteOffset + ga.ByteOffset
	stride := ct.Size() * comps
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	for i := 0; i < ga.Count; i++ {
		elemOff := base + i*stride
		for c := 0; c < comps; c++ {
			off := elemOff + c*ct.Size()
			if off+ct.Size() > len(buf) {
				return nil, fmt.Errorf("document: accessor element %d: %w", i, ErrTruncatedChunk)
			}
			v, err := readComponent(buf, off, ct)
			if err != nil {
				return nil, err
			}
			a.Data[i*comps+c] = denormalize(v, ct, ga.Normalized)
		}
	}
	return a, nil
}

func readComponent(buf []byte, off int, ct ComponentType) (float64, error) {
	switch ct {
	case ComponentByte:
		return float64(int8(buf[off])), nil
	case ComponentUnsignedByte:
		return float64(buf[off]), nil
	case ComponentShort:
		return float64(int16(binary.LittleEndian.Uint16(buf[off : off+2]))), nil
	case ComponentUnsignedShort:
		return float64(binary.LittleEndian.Uint16(buf[off : off+2])), nil
	case ComponentUnsignedInt:
		return float64(binary.LittleEndian.Uint32(buf[off : off+4])), nil
	case ComponentFloat:
		return float64(float32FromBits(binary.LittleEndian.Uint32(buf[off : off+4]))), nil
	default:
		return 0, fmt.Errorf("document: unsupported component type %d", ct)
	}
}
