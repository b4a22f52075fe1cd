package document

// The structs below mirror the glTF 2.0 JSON schema closely enough to
// round-trip every field this pipeline reads or writes. They are the wire
// representation; io_read.go and io_write.go convert between this shape
// and the mutable Document graph the pipeline steps operate on — the same
// split the teacher's gltf_types.go/gltf_parser.go pair uses between raw
// JSON structs and the ImportedModel they get converted into.

type gltfJSON struct {
	Asset              gltfAsset        `json:"asset"`
	Scene              *int             `json:"scene,omitempty"`
	Scenes             []gltfScene      `json:"scenes,omitempty"`
	Nodes              []gltfNode       `json:"nodes,omitempty"`
	Meshes             []gltfMesh       `json:"meshes,omitempty"`
	Materials          []gltfMaterial   `json:"materials,omitempty"`
	Textures           []gltfTexture    `json:"textures,omitempty"`
	Images             []gltfImage      `json:"images,omitempty"`
	Samplers           []gltfSampler    `json:"samplers,omitempty"`
	Accessors          []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews        []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers            []gltfBuffer     `json:"buffers,omitempty"`
	Skins              []gltfSkin       `json:"skins,omitempty"`
	Animations         []gltfAnimation  `json:"animations,omitempty"`
	ExtensionsUsed     []string         `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string         `json:"extensionsRequired,omitempty"`
}

type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
	Copyright string `json:"copyright,omitempty"`
}

type gltfScene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

type gltfNode struct {
	Name        string     `json:"name,omitempty"`
	Children    []int      `json:"children,omitempty"`
	Mesh        *int       `json:"mesh,omitempty"`
	Skin        *int       `json:"skin,omitempty"`
	Camera      *int       `json:"camera,omitempty"`
	Translation [3]float32 `json:"translation,omitempty"`
	Rotation    [4]float32 `json:"rotation,omitempty"`
	Scale       [3]float32 `json:"scale,omitempty"`
	Matrix      []float32  `json:"matrix,omitempty"`
}

type gltfMesh struct {
	Name       string              `json:"name,omitempty"`
	Primitives []gltfMeshPrimitive `json:"primitives"`
}

type gltfMeshPrimitive struct {
	Attributes map[string]int         `json:"attributes"`
	Indices    *int                   `json:"indices,omitempty"`
	Material   *int                   `json:"material,omitempty"`
	Mode       *int                   `json:"mode,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

type gltfMaterial struct {
	Name                 string                    `json:"name,omitempty"`
	PBRMetallicRoughness *gltfPBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *gltfTextureRef           `json:"normalTexture,omitempty"`
	OcclusionTexture     *gltfTextureRef           `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *gltfTextureRef           `json:"emissiveTexture,omitempty"`
	EmissiveFactor       [3]float32                `json:"emissiveFactor,omitempty"`
	AlphaMode            string                    `json:"alphaMode,omitempty"`
	DoubleSided          bool                      `json:"doubleSided,omitempty"`
}

type gltfPBRMetallicRoughness struct {
	BaseColorFactor          [4]float32      `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *gltfTextureRef `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float32        `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32        `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *gltfTextureRef `json:"metallicRoughnessTexture,omitempty"`
}

type gltfTextureRef struct {
	Index int `json:"index"`
}

type gltfTexture struct {
	Source  *int `json:"source,omitempty"`
	Sampler *int `json:"sampler,omitempty"`
}

type gltfImage struct {
	Name       string `json:"name,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
	URI        string `json:"uri,omitempty"`
}

type gltfSampler struct {
	MagFilter *int `json:"magFilter,omitempty"`
	MinFilter *int `json:"minFilter,omitempty"`
	WrapS     *int `json:"wrapS,omitempty"`
	WrapT     *int `json:"wrapT,omitempty"`
}

type gltfAccessor struct {
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Normalized    bool      `json:"normalized,omitempty"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}

type gltfBufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
	Target     *int `json:"target,omitempty"`
}

type gltfBuffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

type gltfSkin struct {
	Name                string `json:"name,omitempty"`
	InverseBindMatrices *int   `json:"inverseBindMatrices,omitempty"`
	Joints              []int  `json:"joints"`
}

type gltfAnimation struct {
	Name     string                 `json:"name,omitempty"`
	Samplers []gltfAnimationSampler `json:"samplers"`
}

type gltfAnimationSampler struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}
