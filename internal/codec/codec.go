// Package codec adapts image decoding, resampling, and encoding for the
// transcode pipeline. PNG, JPEG, and GIF are handled by the standard library,
// WebP decoding by golang.org/x/image with a chai2010/webp fallback, and WebP
// encoding by chai2010/webp (the standard library has no WebP encoder).
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	// Register the GIF decoder; PNG and JPEG register via the named imports.
	_ "image/gif"

	// WebP support from x/image.
	_ "golang.org/x/image/webp"

	"github.com/cardpress/cardpress/internal/policy"
)

// DecodeError indicates an image could not be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError indicates an image could not be encoded.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Codec performs pixel-level decode, resample, and encode operations.
type Codec struct{}

// New creates a new Codec.
func New() *Codec {
	return &Codec{}
}

// Decode reads and decodes the image at path.
// Returns the decoded image and the detected format name.
func (c *Codec) Decode(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &DecodeError{Path: path, Err: err}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, format, nil
	}

	// Some lossy WebP variants decode only through the libwebp port.
	if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return wimg, "webp", nil
	}

	return nil, "", &DecodeError{Path: path, Err: err}
}

// Resize resamples img to width x height using Catmull-Rom interpolation.
// The alpha channel is preserved.
func (c *Codec) Resize(img image.Image, width, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// EncodeFile encodes img into the given container at path.
// Quality applies to JPEG and WebP (1-100); PNG always uses the maximum
// compression level. Lossy containers receive an RGB-flattened image.
func (c *Codec) EncodeFile(img image.Image, path string, container policy.Container, quality int) error {
	var buf bytes.Buffer

	switch container {
	case policy.ContainerPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return &EncodeError{Path: path, Err: err}
		}
	case policy.ContainerJPEG:
		if err := jpeg.Encode(&buf, flattenRGB(img), &jpeg.Options{Quality: quality}); err != nil {
			return &EncodeError{Path: path, Err: err}
		}
	case policy.ContainerWebP:
		opts := &webp.Options{Quality: float32(quality)}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return &EncodeError{Path: path, Err: err}
		}
	default:
		return &EncodeError{Path: path, Err: fmt.Errorf("unsupported container %q", container)}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

// flattenRGB normalizes img to an opaque RGBA buffer. Palette, grayscale,
// and alpha-carrying modes are converted; the conversion itself is lossless
// for opaque pixels.
func flattenRGB(img image.Image) image.Image {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
