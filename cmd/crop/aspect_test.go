package crop

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	bounds := image.Rect(0, 0, 1000, 800)

	tests := []struct {
		name    string
		x, y    Cuts
		want    image.Rectangle
		clamped bool
	}{
		{"no cuts", Cuts{}, Cuts{}, bounds, false},
		{"margins", Cuts{Leading: 200, Trailing: 200}, Cuts{Leading: 150, Trailing: 150}, image.Rect(200, 150, 800, 650), false},
		{"touching cuts", Cuts{Leading: 600, Trailing: 400}, Cuts{Leading: 10}, image.Rect(600, 10, 601, 800), true},
		{"crossing cuts", Cuts{Leading: 700, Trailing: 500}, Cuts{}, image.Rect(600, 0, 601, 800), true},
		{"whole axis cut", Cuts{Leading: 1000}, Cuts{Trailing: 800}, image.Rect(999, 0, 1000, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, clamped := Compute(bounds, tt.x, tt.y)
			assert.Equal(t, tt.want, r)
			assert.Equal(t, tt.clamped, clamped)
			assert.True(t, r.In(bounds))
			assert.False(t, r.Empty())
		})
	}
}

func TestRestore_CenteredContent(t *testing.T) {
	img := canvas(1000, 800, image.Rect(200, 150, 800, 650))

	r, clamped := Compute(img.Bounds(), Scan(img, AxisX, defaults), Scan(img, AxisY, defaults))
	require.False(t, clamped)
	require.Equal(t, image.Rect(200, 150, 800, 650), r)

	got := Restore(r, 1000, 800)
	assert.Equal(t, image.Rect(188, 150, 813, 650), got)
	assert.InDelta(t, 1.25, float64(got.Dx())/float64(got.Dy()), 0.005)
}

func TestRestore_NoMargin(t *testing.T) {
	img := canvas(120, 90, image.Rect(0, 0, 120, 90))

	r, clamped := Compute(img.Bounds(), Scan(img, AxisX, defaults), Scan(img, AxisY, defaults))
	require.False(t, clamped)

	assert.Equal(t, img.Bounds(), Restore(r, 120, 90))
}

func TestRestore_ShiftsAwayFromEdges(t *testing.T) {
	tests := []struct {
		name string
		in   image.Rectangle
		want image.Rectangle
	}{
		{"against top", image.Rect(100, 0, 600, 200), image.Rect(100, 0, 600, 400)},
		{"against bottom", image.Rect(100, 700, 600, 800), image.Rect(100, 400, 600, 800)},
		{"against left", image.Rect(0, 100, 100, 500), image.Rect(0, 100, 500, 500)},
		{"against right", image.Rect(950, 0, 1000, 80), image.Rect(900, 0, 1000, 80)},
		{"full width strip", image.Rect(0, 300, 1000, 400), image.Rect(0, 0, 1000, 800)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Restore(tt.in, 1000, 800))
		})
	}
}

func TestFit_ShrinksOtherAxis(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	// Growing the height to 160 is impossible, so the width gives way.
	got := Fit(image.Rect(10, 40, 90, 60), bounds, 0.5)
	assert.Equal(t, image.Rect(25, 0, 75, 100), got)

	got = Fit(image.Rect(45, 0, 55, 100), bounds, 4)
	assert.Equal(t, image.Rect(0, 37, 100, 62), got)

	assert.Equal(t, got, Fit(got, bounds, 4))
}

func TestFit_Degenerate(t *testing.T) {
	bounds := image.Rect(0, 0, 40, 30)

	assert.Equal(t, image.Rect(20, 15, 21, 16), Fit(image.Rect(20, 15, 21, 16), bounds, 4.0/3))
	assert.True(t, Fit(image.Rect(50, 50, 60, 60), bounds, 1).Empty())
	assert.Equal(t, image.Rect(1, 2, 30, 20), Fit(image.Rect(1, 2, 30, 20), bounds, 0))
}

func TestRestore_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sizes := []image.Point{{1000, 800}, {800, 1000}, {640, 480}, {31, 977}, {1, 1}, {3, 500}, {500, 3}}

	for _, size := range sizes {
		bounds := image.Rect(0, 0, size.X, size.Y)
		ratio := float64(size.X) / float64(size.Y)

		for i := 0; i < 500; i++ {
			x0, x1 := rng.Intn(size.X), rng.Intn(size.X)
			y0, y1 := rng.Intn(size.Y), rng.Intn(size.Y)
			in := image.Rect(min(x0, x1), min(y0, y1), max(x0, x1)+1, max(y0, y1)+1)

			got := Restore(in, size.X, size.Y)
			require.True(t, got.In(bounds), "%v escapes %v", got, bounds)
			require.False(t, got.Empty())
			require.True(t, fitted(got.Dx(), got.Dy(), ratio), "%v from %v not fitted to %v", got, in, size)
			require.True(t, in.In(got), "%v does not contain %v", got, in)
			require.Equal(t, got, Restore(got, size.X, size.Y), "restore is not idempotent for %v", in)
		}
	}
}
