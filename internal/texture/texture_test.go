package texture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gltfpipe/glboptimize/document"
	"github.com/gltfpipe/glboptimize/internal/workerpool"
)

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func docWithTexture(t *testing.T) *document.Document {
	d := document.NewDocument()
	d.Textures = []*document.Texture{
		{Name: "albedo", MimeType: document.MimePNG, Data: solidPNG(t, color.RGBA{255, 0, 0, 255})},
	}
	d.Materials = []*document.Material{
		{Name: "mat", BaseColorTexture: 0, MetallicRoughnessTexture: -1, NormalTexture: -1, OcclusionTexture: -1, EmissiveTexture: -1},
	}
	return d
}

func testPool() *workerpool.Pool {
	return workerpool.New(2, 8, 0)
}

func TestValidateRejectsBadMode(t *testing.T) {
	err := Options{Mode: "DXT5"}.Validate()
	require.Error(t, err)
}

func TestValidateRejectsOutOfRangeETC1SQuality(t *testing.T) {
	bad := 300
	err := Options{Mode: ModeETC1S, Quality: &bad}.Validate()
	require.Error(t, err)
}

func TestProcessFallsBackToJPEGWhenNoEncoderAvailable(t *testing.T) {
	d := docWithTexture(t)
	stats, err := Process(context.Background(), d, Options{}, nil, testPool())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TexturesProcessed)
	require.Len(t, stats.Details, 1)
	assert.Equal(t, "fallback-jpeg", stats.Details[0].Method)
	assert.Equal(t, document.MimeJPEG, d.Textures[0].MimeType)
	assert.NotEmpty(t, d.Textures[0].Data)
}

func TestProcessUsesKTX2WhenEncoderAvailable(t *testing.T) {
	d := docWithTexture(t)
	enc := &estimateEncoder{available: true}
	stats, err := Process(context.Background(), d, Options{}, enc, testPool())
	require.NoError(t, err)

	assert.Equal(t, "ktx2", stats.Details[0].Method)
	assert.Equal(t, document.MimeKTX2, d.Textures[0].MimeType)
	assert.True(t, d.UsedExtensions[document.ExtTextureBasisu])
}

func TestProcessWithNoTexturesIsNoop(t *testing.T) {
	d := document.NewDocument()
	stats, err := Process(context.Background(), d, Options{}, nil, testPool())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TexturesProcessed)
}

func TestSelectedTexturesFiltersBySlot(t *testing.T) {
	d := docWithTexture(t)
	d.Textures = append(d.Textures, &document.Texture{Name: "unused", MimeType: document.MimePNG, Data: solidPNG(t, color.RGBA{0, 255, 0, 255})})

	got := selectedTextures(d, []string{"baseColorTexture"})
	assert.Equal(t, []int{0}, got)
}

func TestSelectedTexturesDefaultsToAll(t *testing.T) {
	d := docWithTexture(t)
	got := selectedTextures(d, nil)
	assert.Equal(t, []int{0}, got)
}
