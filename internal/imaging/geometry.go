package imaging

import (
	"image"
	"math"
)

// ContainSize computes the contain-resize target. maxWidth wins when the
// image is wider than it; otherwise a non-zero exactWidth different from the
// current width rescales to that width. Height keeps the aspect ratio,
// truncated. ok is false when no resize applies; contain never upscales
// through maxWidth.
func ContainSize(w, h, maxWidth, exactWidth int) (int, int, bool) {
	if w <= 0 || h <= 0 {
		return w, h, false
	}
	ratio := float64(h) / float64(w)
	switch {
	case maxWidth > 0 && w > maxWidth:
		return maxWidth, atLeastOne(int(float64(maxWidth) * ratio)), true
	case exactWidth > 0 && w != exactWidth:
		return exactWidth, atLeastOne(int(float64(exactWidth) * ratio)), true
	default:
		return w, h, false
	}
}

// CoverSize computes the smallest aspect-preserving size covering
// targetW x targetH. Masters smaller than the target are upscaled.
func CoverSize(w, h, targetW, targetH int) (int, int) {
	if w <= 0 || h <= 0 || targetW <= 0 || targetH <= 0 {
		return w, h
	}
	ratioImg := float64(w) / float64(h)
	ratioReq := float64(targetW) / float64(targetH)
	if ratioImg > ratioReq {
		return atLeastOne(int(float64(targetH) * ratioImg)), targetH
	}
	return targetW, atLeastOne(int(float64(targetW) / ratioImg))
}

// CropRect returns the centered targetW x targetH box inside a w x h bitmap.
// Offsets are floored; the box may extend past the bitmap when it is smaller
// than the target.
func CropRect(w, h, targetW, targetH int) image.Rectangle {
	left := int(math.Floor(float64(w-targetW) / 2))
	top := int(math.Floor(float64(h-targetH) / 2))
	return image.Rect(left, top, left+targetW, top+targetH)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
