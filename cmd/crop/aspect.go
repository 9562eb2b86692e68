package crop

import (
	"image"
	"math"
)

// Restore adjusts r so its width/height ratio matches that of the w×h image
// it was cut from, without leaving that image.
func Restore(r image.Rectangle, w, h int) image.Rectangle {
	if w <= 0 || h <= 0 {
		return r
	}
	return Fit(r, image.Rect(0, 0, w, h), float64(w)/float64(h))
}

// Fit grows r along one axis until its width/height ratio is the integer
// rectangle closest to ratio. Growth is split evenly between both sides and
// pushed to the opposite side when it runs into bounds. When bounds are too
// small on that axis, r takes their full extent there and shrinks along the
// other axis instead, staying centered.
//
// A rectangle that already has the closest achievable ratio comes back
// unchanged, so Fit is idempotent.
func Fit(r, bounds image.Rectangle, ratio float64) image.Rectangle {
	r = r.Intersect(bounds)
	if r.Empty() || !(ratio > 0) || math.IsInf(ratio, 0) {
		return r
	}

	cw, ch := r.Dx(), r.Dy()
	if fitted(cw, ch, ratio) {
		return r
	}

	if float64(cw)/float64(ch) > ratio {
		if want := pixels(float64(cw) / ratio); want <= bounds.Dy() {
			r.Min.Y, r.Max.Y = resize(r.Min.Y, r.Max.Y, want, bounds.Min.Y, bounds.Max.Y)
			return r
		}
		r.Min.Y, r.Max.Y = bounds.Min.Y, bounds.Max.Y
		want := min(pixels(float64(bounds.Dy())*ratio), bounds.Dx())
		r.Min.X, r.Max.X = resize(r.Min.X, r.Max.X, want, bounds.Min.X, bounds.Max.X)
		return r
	}

	if want := pixels(float64(ch) * ratio); want <= bounds.Dx() {
		r.Min.X, r.Max.X = resize(r.Min.X, r.Max.X, want, bounds.Min.X, bounds.Max.X)
		return r
	}
	r.Min.X, r.Max.X = bounds.Min.X, bounds.Max.X
	want := min(pixels(float64(bounds.Dx())/ratio), bounds.Dy())
	r.Min.Y, r.Max.Y = resize(r.Min.Y, r.Max.Y, want, bounds.Min.Y, bounds.Max.Y)
	return r
}

func fitted(w, h int, ratio float64) bool {
	return pixels(float64(w)/ratio) == h || pixels(float64(h)*ratio) == w
}

// size must not exceed bmax-bmin.
func resize(lo, hi, size, bmin, bmax int) (int, int) {
	lo -= (size - (hi - lo)) / 2
	hi = lo + size

	if lo < bmin {
		hi += bmin - lo
		lo = bmin
	}
	if hi > bmax {
		lo -= hi - bmax
		hi = bmax
	}

	return lo, hi
}

func pixels(v float64) int {
	return max(1, int(math.Round(v)))
}
