// Package document models the in-memory glTF 2.0 document graph the
// pipeline mutates in place: buffers, accessors, primitives, meshes,
// materials, textures, nodes, and scenes (spec §3). Types and constants
// here mirror the glTF 2.0 JSON schema the way the teacher's
// engine/loader/gltf_types.go mirrors it, but are shaped for in-place
// mutation by pipeline steps rather than one-shot GPU import.
//
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package document

// ComponentType is a glTF accessor component type.
type ComponentType int

// Component type constants, matching the glTF 2.0 JSON integer codes.
const (
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

// Size returns the byte size of a single component of this type.
func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// AccessorType is the shape (SCALAR/VEC2/.../MAT4) of an accessor element.
type AccessorType string

// Accessor type constants.
const (
	TypeScalar AccessorType = "SCALAR"
	TypeVec2   AccessorType = "VEC2"
	TypeVec3   AccessorType = "VEC3"
	TypeVec4   AccessorType = "VEC4"
	TypeMat2   AccessorType = "MAT2"
	TypeMat3   AccessorType = "MAT3"
	TypeMat4   AccessorType = "MAT4"
)

// ComponentCount returns the number of scalar components in one element of this type.
func (t AccessorType) ComponentCount() int {
	switch t {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	case TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	default:
		return 0
	}
}

// Primitive topology modes, per the glTF 2.0 "mode" field.
const (
	ModePoints        = 0
	ModeLines         = 1
	ModeLineLoop      = 2
	ModeLineStrip     = 3
	ModeTriangles     = 4
	ModeTriangleStrip = 5
	ModeTriangleFan   = 6
)

// Attribute semantic names used as Primitive.Attributes keys.
const (
	SemanticPosition = "POSITION"
	SemanticNormal   = "NORMAL"
	SemanticTangent  = "TANGENT"
)

// TexcoordSemantic returns "TEXCOORD_n".
func TexcoordSemantic(n int) string { return semanticN("TEXCOORD_", n) }

// ColorSemantic returns "COLOR_n".
func ColorSemantic(n int) string { return semanticN("COLOR_", n) }

// JointsSemantic returns "JOINTS_n".
func JointsSemantic(n int) string { return semanticN("JOINTS_", n) }

// WeightsSemantic returns "WEIGHTS_n".
func WeightsSemantic(n int) string { return semanticN("WEIGHTS_", n) }

func semanticN(prefix string, n int) string {
	digits := [...]byte{'0' + byte(n%10)}
	if n < 10 {
		return prefix + string(digits[:])
	}
	// Primitives rarely carry more than a handful of UV/color/joint sets;
	// fall back to a general formatter for the uncommon two-digit case.
	return prefix + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// MIME types a Texture's encoded bytes may carry.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeKTX2 = "image/ktx2"
	MimeWebP = "image/webp"
)

// Extension identifiers the document may mark used/required.
const (
	ExtDracoMeshCompression = "KHR_draco_mesh_compression"
	ExtTextureBasisu        = "KHR_texture_basisu"
)

// GLB container constants, per the glTF 2.0 binary file format spec.
const (
	glbMagic      uint32 = 0x46546C67 // "glTF"
	glbVersion    uint32 = 2
	chunkTypeJSON uint32 = 0x4E4F534A // "JSON"
	chunkTypeBIN  uint32 = 0x004E4942 // "BIN\0"

	// MaxFileSize is the largest GLB this package will parse (spec §6).
	MaxFileSize = 100 * 1024 * 1024 // 104 857 600 bytes
)

type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type glbChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}
