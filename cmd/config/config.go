package config

import (
	"fmt"
	"runtime"

	"github.com/Z3belek/cpar/cmd/crop"
	apperrors "github.com/Z3belek/cpar/cmd/errors"
)

const (
	DefaultThreshold  = 250
	DefaultPercentile = 95.0
	DefaultExtra      = 0
	DefaultDownscale  = 1.0
	DefaultQuality    = 95
)

// Override is a per-axis value that only counts when Set is true.
type Override[T any] struct {
	Value T
	Set   bool
}

func (o Override[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

// Flags are the raw command line values before validation.
type Flags struct {
	Threshold  int
	XThreshold Override[int]
	YThreshold Override[int]

	Percentile  float64
	XPercentile Override[float64]
	YPercentile Override[float64]

	Extra  int
	XExtra Override[int]
	YExtra Override[int]

	Blur      Override[float64]
	Downscale float64

	Jobs    int
	Quality int
	DryRun  bool
}

// Config is the validated run configuration, built once at startup.
type Config struct {
	X crop.AxisParameters
	Y crop.AxisParameters

	// BlurSigma is zero when no blur is applied.
	BlurSigma float64
	Downscale float64

	Jobs    int
	Quality int
	DryRun  bool
}

// NewFlags returns Flags holding the documented defaults.
func NewFlags() Flags {
	return Flags{
		Threshold:  DefaultThreshold,
		Percentile: DefaultPercentile,
		Extra:      DefaultExtra,
		Downscale:  DefaultDownscale,
		Quality:    DefaultQuality,
	}
}

// Resolve validates the flags and applies the shared defaults to every
// axis that was not overridden.
func (f Flags) Resolve() (Config, error) {
	x, err := resolveAxis("x", f.XThreshold.Or(f.Threshold), f.XPercentile.Or(f.Percentile), f.XExtra.Or(f.Extra))
	if err != nil {
		return Config{}, err
	}
	y, err := resolveAxis("y", f.YThreshold.Or(f.Threshold), f.YPercentile.Or(f.Percentile), f.YExtra.Or(f.Extra))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		X:         x,
		Y:         y,
		Downscale: f.Downscale,
		Jobs:      f.Jobs,
		Quality:   f.Quality,
		DryRun:    f.DryRun,
	}

	if f.Blur.Set {
		if !(f.Blur.Value >= 0) {
			return Config{}, apperrors.NewConfigError(fmt.Sprintf("blur sigma must be >= 0 (got %v)", f.Blur.Value), nil)
		}
		cfg.BlurSigma = f.Blur.Value
	}
	if !(cfg.Downscale > 0) {
		return Config{}, apperrors.NewConfigError(fmt.Sprintf("downscale factor must be > 0 (got %v)", cfg.Downscale), nil)
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return Config{}, apperrors.NewConfigError(fmt.Sprintf("quality must be within [1, 100] (got %d)", cfg.Quality), nil)
	}
	if cfg.Jobs < 0 {
		return Config{}, apperrors.NewConfigError(fmt.Sprintf("jobs must be >= 0 (got %d)", cfg.Jobs), nil)
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = runtime.NumCPU()
	}

	return cfg, nil
}

func resolveAxis(axis string, threshold int, percentile float64, extra int) (crop.AxisParameters, error) {
	if threshold < 0 || threshold > 255 {
		return crop.AxisParameters{}, apperrors.NewConfigError(fmt.Sprintf("%s threshold must be within [0, 255] (got %d)", axis, threshold), nil)
	}
	if !(percentile >= 0 && percentile <= 100) {
		return crop.AxisParameters{}, apperrors.NewConfigError(fmt.Sprintf("%s percentile must be within [0, 100] (got %v)", axis, percentile), nil)
	}
	if extra < 0 {
		return crop.AxisParameters{}, apperrors.NewConfigError(fmt.Sprintf("%s extra must be >= 0 (got %d)", axis, extra), nil)
	}

	return crop.AxisParameters{
		Threshold:  uint8(threshold),
		Percentile: percentile,
		Extra:      extra,
	}, nil
}
