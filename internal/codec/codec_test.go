package codec

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpress/cardpress/internal/policy"
)

func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestDecode_PNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.png")
	writeTestPNG(t, path, 64, 96)

	c := New()
	img, format, err := c.Decode(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())
}

func TestDecode_Missing(t *testing.T) {
	c := New()
	_, _, err := c.Decode(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecode_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image at all"), 0o644))

	c := New()
	_, _, err := c.Decode(path)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, path, decodeErr.Path)
}

func TestResize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 100, 200))
	c := New()
	dst := c.Resize(src, 50, 100)
	assert.Equal(t, 50, dst.Bounds().Dx())
	assert.Equal(t, 100, dst.Bounds().Dy())
}

func TestResize_PreservesAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, A: 0})
		}
	}

	c := New()
	dst := c.Resize(src, 20, 20).(*image.NRGBA)
	_, _, _, a := dst.At(10, 10).RGBA()
	assert.Equal(t, uint32(0), a)
}

func TestEncodeFile_Containers(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: 60, A: 255})
		}
	}

	c := New()
	for _, container := range []policy.Container{policy.ContainerPNG, policy.ContainerJPEG, policy.ContainerWebP} {
		path := filepath.Join(dir, "out."+container.Ext())
		require.NoError(t, c.EncodeFile(img, path, container, 85))

		decoded, format, err := c.Decode(path)
		require.NoError(t, err, "container %s", container)
		assert.Equal(t, string(container), format)
		assert.Equal(t, 32, decoded.Bounds().Dx())
	}
}

func TestEncodeFile_UnsupportedContainer(t *testing.T) {
	c := New()
	err := c.EncodeFile(image.NewNRGBA(image.Rect(0, 0, 1, 1)), filepath.Join(t.TempDir(), "x.bmp"), policy.Container("bmp"), 85)
	require.Error(t, err)

	var encodeErr *EncodeError
	assert.ErrorAs(t, err, &encodeErr)
}

func TestEncodeFile_BadPath(t *testing.T) {
	c := New()
	err := c.EncodeFile(image.NewNRGBA(image.Rect(0, 0, 1, 1)), filepath.Join(t.TempDir(), "missing", "x.png"), policy.ContainerPNG, 85)
	require.Error(t, err)

	var encodeErr *EncodeError
	assert.ErrorAs(t, err, &encodeErr)
}

func TestFlattenRGB(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 50, G: 60, B: 70, A: 255})
		}
	}

	flat := flattenRGB(src)
	rgba, ok := flat.(*image.RGBA)
	require.True(t, ok)
	r, g, b, a := rgba.At(1, 1).RGBA()
	assert.Equal(t, uint32(50<<8|50), r)
	assert.Equal(t, uint32(60<<8|60), g)
	assert.Equal(t, uint32(70<<8|70), b)
	assert.Equal(t, uint32(0xffff), a)
}
