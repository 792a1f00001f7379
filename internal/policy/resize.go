package policy

import "math"

// FitWithin computes output dimensions for an image of width x height
// constrained to maxWidth x maxHeight. Dimensions already inside the bound
// are returned unchanged: this never upscales. Otherwise the image is scaled
// down uniformly, preserving aspect ratio, so both dimensions fit the box.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))

	newWidth := int(math.Round(float64(width) * scale))
	newHeight := int(math.Round(float64(height) * scale))

	if newWidth > maxWidth {
		newWidth = maxWidth
	}
	if newHeight > maxHeight {
		newHeight = maxHeight
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}
	return newWidth, newHeight
}
