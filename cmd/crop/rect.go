package crop

import "image"

// Compute turns the cuts of both axes into a crop rectangle in zero-based
// coordinates of an image with the given bounds. An axis whose cuts leave
// less than one line collapses onto a single line around the point where
// the cuts meet; the second return value reports that this happened.
func Compute(bounds image.Rectangle, x, y Cuts) (image.Rectangle, bool) {
	left, right, xClamped := span(x, bounds.Dx())
	top, bottom, yClamped := span(y, bounds.Dy())

	return image.Rect(left, top, right, bottom), xClamped || yClamped
}

func span(c Cuts, n int) (lo, hi int, clamped bool) {
	lo, hi = c.Leading, n-c.Trailing
	if hi-lo >= 1 {
		return lo, hi, false
	}

	mid := clamp((lo+hi)/2, 0, n-1)
	return mid, mid + 1, true
}
