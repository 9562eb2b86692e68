package crop

import "image"

// Axis selects which pair of edges a scan looks at.
type Axis int

const (
	// AxisX scans columns and finds the left and right margins.
	AxisX Axis = iota
	// AxisY scans rows and finds the top and bottom margins.
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// AxisParameters tune the whitespace test for one axis.
type AxisParameters struct {
	// Threshold is the luminance at or above which a pixel counts as blank.
	Threshold uint8
	// Percentile is the share of blank pixels, in [0, 100], a line needs
	// to be classified as whitespace.
	Percentile float64
	// Extra lines removed beyond the trailing (right or bottom) edge.
	Extra int
}

// Cuts is the number of lines removed from the start and the end of an axis.
type Cuts struct {
	Leading  int
	Trailing int
	// Blank is set when no line on the axis held any content.
	Blank bool
}

// Scan walks inward from both ends of the axis and counts the lines that
// pass the whitespace test, then moves the trailing cut params.Extra lines
// further in.
//
// Every pixel of a line is sampled. Its intensity is the color.GrayModel
// luminance after compositing over white, so transparent margins are blank.
// When the whole axis is whitespace the cuts meet at its center.
func Scan(img image.Image, axis Axis, params AxisParameters) Cuts {
	bounds := img.Bounds()
	dir := image.Pt(1, 0)
	n := bounds.Dx()
	if axis == AxisY {
		dir = image.Pt(0, 1)
		n = bounds.Dy()
	}

	var cuts Cuts
	leading := findBorder(img, scanPoint(bounds, dir), dir, n, params)
	if leading == n {
		cuts = Cuts{Leading: n / 2, Trailing: n - n/2, Blank: true}
	} else {
		back := image.Pt(-dir.X, -dir.Y)
		trailing := findBorder(img, scanPoint(bounds, back), back, n-leading, params)
		cuts = Cuts{Leading: leading, Trailing: trailing}
	}

	return widen(cuts, params.Extra, n)
}

func findBorder(img image.Image, pt image.Point, dir image.Point, limit int, params AxisParameters) int {
	scan := image.Pt(abs(dir.Y), abs(dir.X))

	count := 0
	for count < limit && scanImage(img, pt, scan, params) {
		pt = pt.Add(dir)
		count++
	}

	return count
}

func scanPoint(rect image.Rectangle, dir image.Point) image.Point {
	pt := rect.Min
	if dir.X < 0 {
		pt.X = rect.Max.X - 1
	}
	if dir.Y < 0 {
		pt.Y = rect.Max.Y - 1
	}
	return pt
}

func scanImage(img image.Image, pt image.Point, scan image.Point, params AxisParameters) bool {
	bounds := img.Bounds()

	total, blank := 0, 0
	for ; pt.In(bounds); pt = pt.Add(scan) {
		total++
		if luminance(img, pt.X, pt.Y) >= params.Threshold {
			blank++
		}
	}

	return float64(blank)*100 >= params.Percentile*float64(total)
}

func luminance(img image.Image, x, y int) uint8 {
	if p, ok := img.(*image.Gray); ok {
		return p.GrayAt(x, y).Y
	}

	r, g, b, a := img.At(x, y).RGBA()
	under := 0xffff - a
	r, g, b = r+under, g+under, b+under

	// Same weights as color.GrayModel.
	return uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}

// The trailing cut stops where the leading one begins.
func widen(c Cuts, extra, n int) Cuts {
	if extra <= 0 {
		return c
	}

	c.Trailing = clamp(c.Trailing+extra, 0, n-c.Leading)
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
