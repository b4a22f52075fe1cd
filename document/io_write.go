package document

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
)

// DracoEncoder compresses one primitive's geometry into a Draco
// edgebreaker blob. Implementations live outside this package (see
// internal/draco) so that document has no dependency on a concrete
// compression backend; Write only needs the shape of the result to
// build the KHR_draco_mesh_compression extension object.
type DracoEncoder interface {
	Encode(d *Document, p *Primitive) (EncodedPrimitive, error)
}

// EncodedPrimitive is the result of compressing one primitive's geometry.
type EncodedPrimitive struct {
	// Data is the encoded Draco bitstream.
	Data []byte
	// AttributeIDs maps each attribute semantic present in the blob
	// (e.g. "POSITION") to its Draco-internal attribute id, which the
	// KHR_draco_mesh_compression extension object records per-primitive.
	AttributeIDs map[string]int
}

// WriteOption configures Write.
type WriteOption func(*writeConfig)

type writeConfig struct {
	dracoEncoder DracoEncoder
}

// WithDracoEncoder supplies the encoder Write uses to compress primitives
// that carry Draco metadata (attached by the draco pipeline step). Without
// one, primitives with Draco metadata are written uncompressed and the
// extension is not marked used.
func WithDracoEncoder(enc DracoEncoder) WriteOption {
	return func(c *writeConfig) { c.dracoEncoder = enc }
}

// Write serializes d as a glTF-2.0 binary container at path, registering
// the Draco and KHR_texture_basisu extensions per the entities' current
// state (spec §3 invariants 7–8, §4.1). Mirrors the teacher's
// read/convert split in reverse: this package owns the JSON + binary
// chunk assembly the way gltf_parser.go owns their disassembly.
func Write(path string, d *Document, opts ...WriteOption) error {
	cfg := &writeConfig{}
	for _, o := range opts {
		o(cfg)
	}

	g, bin, err := buildJSON(d, cfg)
	if err != nil {
		return fmt.Errorf("document: build json: %w", err)
	}

	jsonBytes, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("document: marshal json: %w", err)
	}
	jsonBytes = padTo4(jsonBytes, ' ')
	bin = padTo4(bin, 0)

	total := 12 + 8 + len(jsonBytes)
	if len(bin) > 0 {
		total += 8 + len(bin)
	}

	buf := make([]byte, 0, total)
	buf = appendU32(buf, glbMagic)
	buf = appendU32(buf, glbVersion)
	buf = appendU32(buf, uint32(total))

	buf = appendU32(buf, uint32(len(jsonBytes)))
	buf = appendU32(buf, chunkTypeJSON)
	buf = append(buf, jsonBytes...)

	if len(bin) > 0 {
		buf = appendU32(buf, uint32(len(bin)))
		buf = appendU32(buf, chunkTypeBIN)
		buf = append(buf, bin...)
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("document: write %s: %w", path, err)
	}
	return nil
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func padTo4(b []byte, fill byte) []byte {
	rem := len(b) % 4
	if rem == 0 {
		return b
	}
	pad := make([]byte, 4-rem)
	for i := range pad {
		pad[i] = fill
	}
	return append(b, pad...)
}

func buildJSON(d *Document, cfg *writeConfig) (*gltfJSON, []byte, error) {
	g := &gltfJSON{
		Asset: gltfAsset{Version: "2.0", Generator: generatorString(d), Copyright: d.Copyright},
	}

	var bin []byte
	appendBuffer := func(data []byte) (bufferViewIdx int) {
		offset := len(bin)
		bin = append(bin, data...)
		g.BufferViews = append(g.BufferViews, gltfBufferView{Buffer: 0, ByteOffset: offset, ByteLength: len(data)})
		bin = padTo4(bin, 0)
		return len(g.BufferViews) - 1
	}

	// Images first so texture.source indices are stable once computed.
	imageOf := make([]int, len(d.Textures))
	for i, tex := range d.Textures {
		bvIdx := appendBuffer(tex.Data)
		g.Images = append(g.Images, gltfImage{Name: tex.Name, MimeType: tex.MimeType, BufferView: &bvIdx})
		imageOf[i] = len(g.Images) - 1
	}
	for i := range d.Textures {
		src := imageOf[i]
		g.Textures = append(g.Textures, gltfTexture{Source: &src})
	}
	if len(d.Textures) > 0 {
		for i := range g.Textures {
			if d.Textures[i].MimeType == MimeKTX2 {
				d.UseExtension(ExtTextureBasisu, true)
			}
		}
	}

	accessorIdx := make([]int, len(d.Accessors))
	for i, a := range d.Accessors {
		ga, data, err := encodeAccessor(a)
		if err != nil {
			return nil, nil, fmt.Errorf("accessor %d: %w", i, err)
		}
		if data != nil {
			bvIdx := appendBuffer(data)
			ga.BufferView = &bvIdx
		}
		g.Accessors = append(g.Accessors, ga)
		accessorIdx[i] = len(g.Accessors) - 1
	}

	for _, m := range d.Materials {
		g.Materials = append(g.Materials, encodeMaterial(m))
	}

	anyDracoUsed := false
	for _, mesh := range d.Meshes {
		gmesh := gltfMesh{Name: mesh.Name}
		for _, p := range mesh.Primitives {
			gp := gltfMeshPrimitive{Attributes: map[string]int{}}
			for sem, idx := range p.Attributes {
				gp.Attributes[sem] = accessorIdx[idx]
			}
			if p.Indices >= 0 {
				idx := accessorIdx[p.Indices]
				gp.Indices = &idx
			}
			if p.Material >= 0 {
				mat := p.Material
				gp.Material = &mat
			}
			if p.Mode != ModeTriangles {
				mode := p.Mode
				gp.Mode = &mode
			}

			if p.Draco != nil && cfg.dracoEncoder != nil {
				enc, err := cfg.dracoEncoder.Encode(d, p)
				if err != nil {
					return nil, nil, fmt.Errorf("draco encode: %w", err)
				}
				bvIdx := appendBuffer(enc.Data)
				attrs := make(map[string]interface{}, len(enc.AttributeIDs))
				for sem, id := range enc.AttributeIDs {
					attrs[sem] = id
				}
				gp.Extensions = map[string]interface{}{
					ExtDracoMeshCompression: map[string]interface{}{
						"bufferView": bvIdx,
						"attributes": attrs,
					},
				}
				anyDracoUsed = true
			}
			gmesh.Primitives = append(gmesh.Primitives, gp)
		}
		g.Meshes = append(g.Meshes, gmesh)
	}
	if anyDracoUsed {
		d.UseExtension(ExtDracoMeshCompression, true)
	}

	for _, n := range d.Nodes {
		gn := gltfNode{Name: n.Name, Children: n.Children, Translation: n.Translation, Rotation: n.Rotation, Scale: n.Scale}
		if n.Mesh >= 0 {
			mesh := n.Mesh
			gn.Mesh = &mesh
		}
		if n.Skin >= 0 {
			skin := n.Skin
			gn.Skin = &skin
		}
		g.Nodes = append(g.Nodes, gn)
	}

	for _, s := range d.Scenes {
		g.Scenes = append(g.Scenes, gltfScene{Name: s.Name, Nodes: s.Nodes})
	}
	if d.DefaultScene >= 0 && d.DefaultScene < len(g.Scenes) {
		scene := d.DefaultScene
		g.Scene = &scene
	}

	for _, s := range d.Skins {
		gs := gltfSkin{Name: s.Name, Joints: s.Joints}
		if s.InverseBindMatrices >= 0 {
			ibm := accessorIdx[s.InverseBindMatrices]
			gs.InverseBindMatrices = &ibm
		}
		g.Skins = append(g.Skins, gs)
	}

	for _, a := range d.Animations {
		ga := gltfAnimation{Name: a.Name}
		for _, samp := range a.Samplers {
			ga.Samplers = append(ga.Samplers, gltfAnimationSampler{
				Input:  accessorIdx[samp.Input],
				Output: accessorIdx[samp.Output],
			})
		}
		g.Animations = append(g.Animations, ga)
	}

	for ext := range d.UsedExtensions {
		g.ExtensionsUsed = append(g.ExtensionsUsed, ext)
	}
	for ext := range d.RequiredExtensions {
		g.ExtensionsRequired = append(g.ExtensionsRequired, ext)
	}

	if len(bin) > 0 {
		g.Buffers = []gltfBuffer{{ByteLength: len(bin)}}
	}

	return g, bin, nil
}

func generatorString(d *Document) string {
	if d.Generator != "" {
		return d.Generator
	}
	return "glboptimize"
}

func encodeMaterial(m *Material) gltfMaterial {
	metallic := m.MetallicFactor
	roughness := m.RoughnessFactor
	gm := gltfMaterial{
		Name: m.Name,
		PBRMetallicRoughness: &gltfPBRMetallicRoughness{
			BaseColorFactor: m.BaseColorFactor,
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
		EmissiveFactor: m.EmissiveFactor,
		AlphaMode:      m.AlphaMode,
		DoubleSided:    m.DoubleSided,
	}
	if m.BaseColorTexture >= 0 {
		gm.PBRMetallicRoughness.BaseColorTexture = &gltfTextureRef{Index: m.BaseColorTexture}
	}
	if m.MetallicRoughnessTexture >= 0 {
		gm.PBRMetallicRoughness.MetallicRoughnessTexture = &gltfTextureRef{Index: m.MetallicRoughnessTexture}
	}
	if m.NormalTexture >= 0 {
		gm.NormalTexture = &gltfTextureRef{Index: m.NormalTexture}
	}
	if m.OcclusionTexture >= 0 {
		gm.OcclusionTexture = &gltfTextureRef{Index: m.OcclusionTexture}
	}
	if m.EmissiveTexture >= 0 {
		gm.EmissiveTexture = &gltfTextureRef{Index: m.EmissiveTexture}
	}
	return gm
}

// encodeAccessor re-packs an accessor's float32 data into its current
// ComponentType/Normalized encoding. Quantization (internal/quantize)
// acts purely by mutating those two fields ahead of write time, so this
// is the single place the narrower byte representation is produced.
func encodeAccessor(a *Accessor) (gltfAccessor, []byte, error) {
	comps := a.Type.ComponentCount()
	ga := gltfAccessor{
		ComponentType: int(a.ComponentType),
		Normalized:    a.Normalized,
		Count:         a.Count,
		Type:          string(a.Type),
		Min:           a.Min,
		Max:           a.Max,
	}
	if a.Count == 0 || len(a.Data) == 0 {
		return ga, nil, nil
	}

	size := a.ComponentType.Size()
	if size == 0 {
		return ga, nil, fmt.Errorf("unsupported component type %d", a.ComponentType)
	}
	out := make([]byte, a.Count*comps*size)
	for i := 0; i < a.Count*comps; i++ {
		c := i % comps
		v := removeTransform(a.Data[i], a.Scale, a.Offset, c)
		raw := renormalize(v, a.ComponentType, a.Normalized)
		off := i * size
		switch a.ComponentType {
		case ComponentByte:
			out[off] = byte(int8(raw))
		case ComponentUnsignedByte:
			out[off] = byte(uint8(raw))
		case ComponentShort:
			binary.LittleEndian.PutUint16(out[off:], uint16(int16(raw)))
		case ComponentUnsignedShort:
			binary.LittleEndian.PutUint16(out[off:], uint16(raw))
		case ComponentUnsignedInt:
			binary.LittleEndian.PutUint32(out[off:], uint32(raw))
		case ComponentFloat:
			binary.LittleEndian.PutUint32(out[off:], float32Bits(float32(raw)))
		}
	}
	return ga, out, nil
}
