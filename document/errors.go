package document

import "errors"

// Sentinel errors for GLB container and JSON parsing, mirroring the
// teacher's gltf_parser.go package-level error convention. Callers at the
// pipeline boundary wrap these with perr.InvalidFile.
var (
	ErrTooSmall          = errors.New("document: file smaller than a glb header")
	ErrBadMagic          = errors.New("document: bad glb magic")
	ErrBadVersion        = errors.New("document: unsupported glb version")
	ErrLengthMismatch    = errors.New("document: declared length does not match file size")
	ErrTooLarge          = errors.New("document: file exceeds the maximum accepted size")
	ErrMissingJSONChunk  = errors.New("document: missing JSON chunk")
	ErrTruncatedChunk    = errors.New("document: chunk header declares more bytes than remain")
	ErrBadJSON           = errors.New("document: malformed JSON chunk")
	ErrBadBufferView     = errors.New("document: buffer view out of range")
	ErrBadAccessorRef    = errors.New("document: accessor references an out-of-range buffer view")
	ErrUnsupportedSparse = errors.New("document: sparse accessors are not supported")
	ErrNoDracoEncoder    = errors.New("document: no draco encoder registered")
)
