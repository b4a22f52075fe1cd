package texture

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"
	"sync"
)

// KTX2Encoder transcodes a decoded image into a KTX2/Basis Universal
// container. Implementations live in this package rather than an
// external module: no pure-Go or cgo Basis Universal binding exists
// anywhere in the dependency corpus this module draws on, so the
// pluggable interface the source spec itself anticipates
// ("if a KTX2 encoder is not available at runtime...") stands in.
type KTX2Encoder interface {
	// Available reports whether this encoder can actually produce KTX2
	// output. The texture step falls back to a lossy re-encode when it
	// cannot.
	Available() bool
	Encode(img image.Image, mode Mode, quality int) ([]byte, error)
}

// estimateEncoder is the one concrete KTX2Encoder this module ships. It
// reports itself unavailable — matching the honest state of the
// ecosystem today — so Process always exercises the documented fallback
// path; the available field lets tests construct an instance that
// reports itself available.
type estimateEncoder struct {
	available bool
}

var _ KTX2Encoder = (*estimateEncoder)(nil)

func (e *estimateEncoder) Available() bool { return e.available }

// Encode produces a synthetic KTX2-shaped payload: the KTX2 identifier
// followed by zero bytes sized to the mode/quality pair's bit budget for
// the image's dimensions. The pixels themselves are not encoded; this is
// a deterministic size model, not a real Basis Universal transcode.
func (e *estimateEncoder) Encode(img image.Image, mode Mode, quality int) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	bitsPerTexel := bitsPerTexelFor(mode, quality)
	payloadBytes := int(math.Ceil(float64(w*h) * bitsPerTexel / 8.0))
	if payloadBytes < 1 {
		payloadBytes = 1
	}

	out := make([]byte, ktx2HeaderSize+payloadBytes)
	copy(out, ktx2Magic)
	return out, nil
}

// ktx2Magic is the real KTX2 file identifier, used so downstream
// inspection tools at least recognize the container shape even though
// the payload itself is a size model rather than real transcoded data.
var ktx2Magic = []byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x32, 0x30, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}

const ktx2HeaderSize = 12

// bitsPerTexelFor approximates Basis Universal's typical bit budgets:
// ETC1S trades size for quality linearly across its 1..255 scale, UASTC
// is a near-fixed higher-quality rate across its narrower 0..4 scale.
func bitsPerTexelFor(mode Mode, quality int) float64 {
	if mode == ModeUASTC {
		return 8.0 - float64(quality)*0.5 // 8 down to 6 bits/texel across 0..4
	}
	level := clampInt(int(math.Round(float64(quality)/51.0)), 1, 5)
	return 1.0 + float64(level)*0.3 // ETC1S: roughly 1.3 to 2.5 bits/texel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	defaultOnce sync.Once
	defaultEnc  KTX2Encoder
)

// Default returns the process-wide texture encoder handle. It reports
// itself unavailable, so Process always takes the documented fallback
// path unless a caller injects a different KTX2Encoder.
func Default() KTX2Encoder {
	defaultOnce.Do(func() {
		defaultEnc = &estimateEncoder{available: false}
	})
	return defaultEnc
}

// fallbackEncode re-encodes img as JPEG when no KTX2 encoder is
// available, mapping ETC1S/UASTC quality onto JPEG's 1-100 scale (spec
// §4.8 "Fallback"). JPEG, not WebP, is used because golang.org/x/image
// only ships a WebP decoder in this dependency corpus, not an encoder.
func fallbackEncode(img image.Image, quality int, mode Mode) ([]byte, error) {
	jpegQuality := jpegQualityFor(mode, quality)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jpegQualityFor(mode Mode, quality int) int {
	if mode == ModeUASTC {
		// 0..4 -> 50..90
		return clampInt(50+quality*10, 1, 100)
	}
	// ETC1S 1..255 -> roughly 10..95
	return clampInt(10+int(float64(quality)/255.0*85.0), 1, 100)
}
