package texture

// Blank imports register decoders with image.Decode for every source
// format the pipeline's input textures may arrive in. PNG and JPEG are
// covered by the standard library; the remaining formats come from
// golang.org/x/image, which has no WebP encoder, hence the stdlib-jpeg
// fallback path in encoder.go.
import (
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)
