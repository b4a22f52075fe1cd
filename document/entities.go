package document

// Document is the in-memory ownership graph every pipeline step mutates
// in place (spec §3). It plays the role the teacher's ImportedModel plays
// for a render-ready mesh, but here the graph is the product, not a
// staging step toward GPU buffers: every pipeline step reads and rewrites
// slices of this struct directly.
//
// Entities are addressed by index into their owning slice; indices are
// stable across a step unless that step explicitly documents otherwise
// (clean and the sanitizer's empty-accessor disposal are the only steps
// that renumber; merge and simplify only replace or append accessors).
type Document struct {
	Accessors  []*Accessor
	Materials  []*Material
	Textures   []*Texture
	Meshes     []*Mesh
	Nodes      []*Node
	Scenes     []*Scene
	Skins      []*Skin
	Animations []*Animation

	// DefaultScene indexes Scenes, or is -1 if the document has none.
	DefaultScene int

	// UsedExtensions and RequiredExtensions mirror the glTF top-level
	// extensionsUsed/extensionsRequired arrays (spec §3 "Extension
	// registration").
	UsedExtensions     map[string]bool
	RequiredExtensions map[string]bool

	// Generator and Copyright carry through the glTF asset block so a
	// round-tripped file doesn't lose its provenance.
	Generator string
	Copyright string
}

// NewDocument returns an empty document ready for population by a reader.
func NewDocument() *Document {
	return &Document{
		DefaultScene:       -1,
		UsedExtensions:     make(map[string]bool),
		RequiredExtensions: make(map[string]bool),
	}
}

// UseExtension marks ext as used, and required as well when required is true.
func (d *Document) UseExtension(ext string, required bool) {
	d.UsedExtensions[ext] = true
	if required {
		d.RequiredExtensions[ext] = true
	}
}

// Accessor is a typed, counted view over a contiguous array of elements
// (spec §3). Data is always decoded to float32 regardless of the accessor's
// on-disk ComponentType; ComponentType and Normalized only govern how the
// writer re-encodes it at serialization time, so quantization is a matter
// of rewriting those two fields (and Data's scale) rather than an
// immediate byte repack.
type Accessor struct {
	ComponentType ComponentType
	Type          AccessorType
	Count         int
	Normalized    bool

	// Data holds Count*Type.ComponentCount() float32 values, row-major
	// per element. Index accessors (Type==SCALAR, used as
	// Primitive.Indices) also decode here, with integer values carried
	// exactly as float32 — safe up to 2^24 vertices, well past any
	// glTF asset this pipeline expects to see.
	Data []float32

	// Min, Max cache the component-wise bounds glTF stores alongside an
	// accessor; nil until computed or read from the source file.
	Min, Max []float32

	// Scale, Offset hold a per-component dequantization transform: the
	// decoded value is offset[c] + rawNormalized*scale[c]. Both nil means
	// the identity transform (scale 1, offset 0). The quantize step is
	// the only writer of these; it is this module's stand-in for the
	// node-local scale/offset the source spec describes, folded into the
	// accessor itself rather than a sibling node's TRS — functionally
	// equivalent and simpler to keep consistent under merge/prune
	// renumbering.
	Scale, Offset []float32

	disposed bool
}

// ElementCount returns the number of scalar components per element.
func (a *Accessor) ElementCount() int { return a.Type.ComponentCount() }

// Vec3At returns element i of a VEC3 accessor.
func (a *Accessor) Vec3At(i int) [3]float32 {
	o := i * 3
	return [3]float32{a.Data[o], a.Data[o+1], a.Data[o+2]}
}

// SetVec3At overwrites element i of a VEC3 accessor.
func (a *Accessor) SetVec3At(i int, v [3]float32) {
	o := i * 3
	a.Data[o], a.Data[o+1], a.Data[o+2] = v[0], v[1], v[2]
}

// Vec4At returns element i of a VEC4 accessor.
func (a *Accessor) Vec4At(i int) [4]float32 {
	o := i * 4
	return [4]float32{a.Data[o], a.Data[o+1], a.Data[o+2], a.Data[o+3]}
}

// IndexAt returns element i of a SCALAR index accessor as an int.
func (a *Accessor) IndexAt(i int) int { return int(a.Data[i]) }

// Primitive is a single draw unit: attribute bindings, optional indices
// and material, and a topology mode (spec §3).
type Primitive struct {
	// Attributes maps a semantic name (SemanticPosition, TexcoordSemantic(0), ...)
	// to an index into Document.Accessors.
	Attributes map[string]int

	// Indices indexes Document.Accessors, or is -1 when the primitive is
	// unindexed (sequential triangles over POSITION).
	Indices int

	// Material indexes Document.Materials, or is -1 when unset.
	Material int

	Mode int

	// Draco, when non-nil, records edgebreaker compression metadata
	// attached by the draco step (spec §4.7); byte-level compression
	// happens at write time, so this is metadata only until then.
	Draco *DracoPrimitiveInfo
}

// DracoPrimitiveInfo is the per-primitive metadata the draco step attaches.
type DracoPrimitiveInfo struct {
	CompressionLevel int
	EncodeSpeed      int
	DecodeSpeed      int
	QuantizePosition int
	QuantizeNormal   int
	QuantizeTexcoord int
	QuantizeColor    int
	QuantizeGeneric  int
}

// PositionAccessor returns the primitive's POSITION accessor, or nil.
func (p *Primitive) PositionAccessor(d *Document) *Accessor {
	return d.accessorFor(p, SemanticPosition)
}

// NormalAccessor returns the primitive's NORMAL accessor, or nil.
func (p *Primitive) NormalAccessor(d *Document) *Accessor {
	return d.accessorFor(p, SemanticNormal)
}

// TangentAccessor returns the primitive's TANGENT accessor, or nil.
func (p *Primitive) TangentAccessor(d *Document) *Accessor {
	return d.accessorFor(p, SemanticTangent)
}

func (d *Document) accessorFor(p *Primitive, semantic string) *Accessor {
	idx, ok := p.Attributes[semantic]
	if !ok {
		return nil
	}
	return d.Accessors[idx]
}

// Mesh is an ordered list of primitives plus an optional name (spec §3).
type Mesh struct {
	Name       string
	Primitives []*Primitive
}

// Material holds PBR-metallic-roughness parameters and five texture slots
// (spec §3).
type Material struct {
	Name string

	BaseColorFactor [4]float32
	MetallicFactor  float32
	RoughnessFactor float32
	EmissiveFactor  [3]float32

	// Each slot indexes Document.Textures, or is -1 when unset.
	BaseColorTexture         int
	MetallicRoughnessTexture int
	NormalTexture            int
	OcclusionTexture         int
	EmissiveTexture          int

	DoubleSided bool
	AlphaMode   string
}

// TextureSlotNames are the five material→texture bindings §4.8 filters by.
var TextureSlotNames = []string{
	"baseColorTexture",
	"normalTexture",
	"metallicRoughnessTexture",
	"occlusionTexture",
	"emissiveTexture",
}

// SlotTexture returns the texture index bound to the named slot, or -1.
func (m *Material) SlotTexture(slot string) int {
	switch slot {
	case "baseColorTexture":
		return m.BaseColorTexture
	case "normalTexture":
		return m.NormalTexture
	case "metallicRoughnessTexture":
		return m.MetallicRoughnessTexture
	case "occlusionTexture":
		return m.OcclusionTexture
	case "emissiveTexture":
		return m.EmissiveTexture
	default:
		return -1
	}
}

// Texture is a reference to encoded image bytes plus a MIME type (spec §3).
// glTF's separate image/sampler/texture objects are collapsed into one
// entity here; this pipeline never needs to share a sampler across images
// independently of its parent texture.
type Texture struct {
	Name     string
	MimeType string
	Data     []byte
}

// Node is a scene-graph node (spec §3).
type Node struct {
	Name string

	// Translation, Rotation (quaternion xyzw), Scale are the node's local
	// TRS transform.
	Translation [3]float32
	Rotation    [4]float32
	Scale       [3]float32

	// Children indexes Document.Nodes.
	Children []int

	// Mesh, Skin index their respective slices, or are -1 when unset.
	Mesh int
	Skin int

	HasCamera bool
	HasLight  bool
}

// Scene is an ordered list of root nodes plus a name (spec §3).
type Scene struct {
	Name  string
	Nodes []int // indexes Document.Nodes
}

// Skin is carried through for round-trip fidelity and reachability; the
// pipeline does not itself reshape skinning data.
type Skin struct {
	Name                string
	InverseBindMatrices int // indexes Document.Accessors, or -1
	Joints              []int
}

// Animation is carried through for round-trip fidelity and reachability.
type Animation struct {
	Name     string
	Samplers []AnimationSampler
}

// AnimationSampler references the input/output accessors of one channel.
type AnimationSampler struct {
	Input  int // indexes Document.Accessors
	Output int // indexes Document.Accessors
}
