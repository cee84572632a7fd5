package qr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, img image.Image) string {
	t.Helper()
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return result.GetText()
}

func TestPNGEncoder_RoundTrip(t *testing.T) {
	uri, err := PNGEncoder{}.Encode(context.Background(), "https://example.com", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, DataURIPrefix))

	b, err := DecodeDataURI(uri)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)

	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
	assert.Equal(t, "https://example.com", decode(t, img))
}

func TestPNGEncoder_EmptyText(t *testing.T) {
	_, err := PNGEncoder{}.Encode(context.Background(), "", DefaultOptions())
	assert.Error(t, err)
}

func TestPNGEncoder_TooLong(t *testing.T) {
	_, err := PNGEncoder{}.Encode(context.Background(), strings.Repeat("a", 5000), DefaultOptions())
	assert.Error(t, err)
}

func TestPNGEncoder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PNGEncoder{}.Encode(ctx, "x", DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodePNG_Margin(t *testing.T) {
	opts := Options{Width: 310, Margin: 3, Level: qrcode.Medium}
	b, err := EncodePNG("https://example.com", opts)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)

	// Version 2 is 25 modules; with 3+3 quiet modules that is 10px each.
	require.Equal(t, 310, img.Bounds().Dx())
	for i := 0; i < 30; i++ {
		r, g, bl, _ := img.At(i, i).RGBA()
		assert.Equal(t, uint32(0xffff), r&g&bl, "pixel %d inside the quiet zone", i)
	}
	r, _, _, _ := img.At(30, 30).RGBA()
	assert.Equal(t, uint32(0), r, "top-left finder starts right after the quiet zone")
}

func TestRasterize_SmallWidthFallsBackToDefaultScale(t *testing.T) {
	bitmap := [][]bool{{true, false}, {false, true}}
	img := rasterize(bitmap, 3, 1)

	assert.Equal(t, 4*defaultScale, img.Bounds().Dx())
	assert.Equal(t, uint8(0), img.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(1), img.ColorIndexAt(defaultScale, defaultScale))
	assert.Equal(t, uint8(0), img.ColorIndexAt(2*defaultScale, defaultScale))
	assert.Equal(t, uint8(1), img.ColorIndexAt(2*defaultScale, 2*defaultScale))
}

func TestDecodeDataURI_RejectsOtherSchemes(t *testing.T) {
	_, err := DecodeDataURI("data:image/jpeg;base64,AAAA")
	assert.Error(t, err)
	_, err = DecodeDataURI(DataURIPrefix + "!!!")
	assert.Error(t, err)
}

func TestSVGRenderer_Deterministic(t *testing.T) {
	r := SVGRenderer{}
	a, err := r.Render("https://example.com")
	require.NoError(t, err)
	b, err := r.Render("https://example.com")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Contains(t, a, "<svg")
	assert.Contains(t, a, `viewBox="0 0 25 25"`)

	c, err := r.Render("https://example.org")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSVGRenderer_EmptyText(t *testing.T) {
	out, err := SVGRenderer{}.Render("")
	require.NoError(t, err)
	assert.Contains(t, out, `viewBox="0 0 21 21"`, "empty text is a version 1 symbol")
}

func TestSVGRenderer_TooLong(t *testing.T) {
	_, err := SVGRenderer{}.Render(strings.Repeat("a", 5000))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("HIGH")
	require.NoError(t, err)
	assert.Equal(t, qrcode.High, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, qrcode.Medium, lvl)

	_, err = ParseLevel("ultra")
	assert.Error(t, err)
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	WriteTerminal(&buf, "https://example.com")
	assert.NotZero(t, buf.Len())
}
