package policy

import (
	"image"
	"image/color"
)

// HasTransparency reports whether img contains at least one non-opaque pixel.
// Modes without an alpha channel are always opaque. The full alpha plane is
// scanned: a single transparent pixel (an anti-aliased edge, say) must flip
// the classification, so sampling is not an option.
func HasTransparency(img image.Image) bool {
	switch im := img.(type) {
	case *image.NRGBA:
		return scanAlpha8(im.Pix, im.Stride, im.Rect)
	case *image.RGBA:
		return scanAlpha8(im.Pix, im.Stride, im.Rect)
	case *image.NRGBA64:
		return scanAlpha16(im.Pix, im.Stride, im.Rect)
	case *image.RGBA64:
		return scanAlpha16(im.Pix, im.Stride, im.Rect)
	case *image.Paletted:
		return scanPaletted(im)
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	default:
		return scanGeneric(img)
	}
}

// scanAlpha8 checks the alpha byte of every 8-bit RGBA/NRGBA pixel.
func scanAlpha8(pix []uint8, stride int, rect image.Rectangle) bool {
	width := rect.Dx() * 4
	for y := 0; y < rect.Dy(); y++ {
		row := pix[y*stride : y*stride+width]
		for x := 3; x < len(row); x += 4 {
			if row[x] != 0xff {
				return true
			}
		}
	}
	return false
}

// scanAlpha16 checks the alpha word of every 16-bit RGBA/NRGBA pixel.
func scanAlpha16(pix []uint8, stride int, rect image.Rectangle) bool {
	width := rect.Dx() * 8
	for y := 0; y < rect.Dy(); y++ {
		row := pix[y*stride : y*stride+width]
		for x := 6; x < len(row); x += 8 {
			if row[x] != 0xff || row[x+1] != 0xff {
				return true
			}
		}
	}
	return false
}

// scanPaletted checks whether any pixel references a non-opaque palette entry.
func scanPaletted(im *image.Paletted) bool {
	opaque := make([]bool, len(im.Palette))
	hasTranslucent := false
	for i, entry := range im.Palette {
		_, _, _, a := entry.RGBA()
		opaque[i] = a == 0xffff
		if !opaque[i] {
			hasTranslucent = true
		}
	}
	if !hasTranslucent {
		return false
	}

	rect := im.Rect
	for y := 0; y < rect.Dy(); y++ {
		row := im.Pix[y*im.Stride : y*im.Stride+rect.Dx()]
		for _, idx := range row {
			if int(idx) < len(opaque) && !opaque[idx] {
				return true
			}
		}
	}
	return false
}

// scanGeneric walks every pixel through the color interface.
func scanGeneric(img image.Image) bool {
	if model := img.ColorModel(); model == color.GrayModel || model == color.Gray16Model ||
		model == color.YCbCrModel || model == color.CMYKModel {
		return false
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
