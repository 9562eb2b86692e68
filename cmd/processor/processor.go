package processor

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"sort"

	"facette.io/natsort"
	"github.com/disintegration/imaging"
	"github.com/samber/lo"

	// WebP sources decode through image.Decode like the formats imaging registers.
	_ "golang.org/x/image/webp"

	"github.com/Z3belek/cpar/cmd/config"
	"github.com/Z3belek/cpar/cmd/crop"
	apperrors "github.com/Z3belek/cpar/cmd/errors"
)

// Batch describes one cpar run.
type Batch struct {
	Sources   []string
	OutputDir string
	Config    config.Config
}

// ImageProcessor runs the crop pipeline on a single image.
type ImageProcessor struct {
	Config config.Config
}

// Result is the outcome for one source file. Err is nil on success.
type Result struct {
	Source string
	// Output is empty when nothing was written.
	Output   string
	Original image.Point
	Crop     image.Rectangle
	Size     image.Point
	Clamped  bool
	Err      error
}

// Summary aggregates the results of a batch, ordered naturally by source.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Clamped   int
	Results   []Result
}

// Run processes every source of the batch. Failures of single files are
// recorded in the summary; the returned error is reserved for problems that
// prevent the batch from running at all, or for a cancelled context.
func Run(ctx context.Context, batch Batch) (Summary, error) {
	sources := resolveSources(batch.Sources)
	if len(sources) == 0 {
		return Summary{}, apperrors.NewIOError("no source files resolved", nil)
	}

	if !batch.Config.DryRun {
		if err := os.MkdirAll(batch.OutputDir, 0o755); err != nil {
			return Summary{}, apperrors.NewIOError(fmt.Sprintf("creating output directory %s", batch.OutputDir), err)
		}
	}

	jobs, results := assignOutputs(sources, batch.OutputDir)
	for _, rejected := range results {
		logResult(rejected)
	}

	workers := max(1, batch.Config.Jobs)
	processed := fileProcess(ImageProcessor{Config: batch.Config}, workers, fileFinder(ctx, jobs))
	for result := range processed {
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return natsort.Compare(results[i].Source, results[j].Source)
	})

	summary := Summary{
		Total:     len(results),
		Succeeded: lo.CountBy(results, func(r Result) bool { return r.Err == nil }),
		Clamped:   lo.CountBy(results, func(r Result) bool { return r.Err == nil && r.Clamped }),
		Results:   results,
	}
	summary.Failed = summary.Total - summary.Succeeded

	return summary, ctx.Err()
}

// Process decodes source, crops it and writes it to dest. In dry-run mode
// the crop is only planned.
func (p ImageProcessor) Process(source, dest string) Result {
	result := Result{Source: source}

	img, err := imaging.Open(source, imaging.AutoOrientation(true))
	if err != nil {
		result.Err = apperrors.NewIOError(fmt.Sprintf("decoding %s", source), err)
		return result
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		result.Err = apperrors.NewIOError(fmt.Sprintf("decoding %s: image has no pixels", source), nil)
		return result
	}

	result.Original = bounds.Size()
	result.Crop, result.Clamped = p.Plan(img)

	if p.Config.DryRun {
		result.Size = p.outputSize(result.Crop.Size())
		return result
	}

	out := p.Render(img, result.Crop)
	result.Size = out.Bounds().Size()

	if err := imaging.Save(out, dest, imaging.JPEGQuality(p.Config.Quality)); err != nil {
		result.Err = apperrors.NewIOError(fmt.Sprintf("encoding %s", dest), err)
		return result
	}
	result.Output = dest

	return result
}

// Plan finds the crop rectangle for img in zero-based coordinates. The
// second return value reports whether the margins left no content and the
// rectangle had to be clamped to a minimum region.
func (p ImageProcessor) Plan(img image.Image) (image.Rectangle, bool) {
	bounds := img.Bounds()

	x := crop.Scan(img, crop.AxisX, p.Config.X)
	y := crop.Scan(img, crop.AxisY, p.Config.Y)
	rect, clamped := crop.Compute(bounds, x, y)

	return crop.Restore(rect, bounds.Dx(), bounds.Dy()), clamped || x.Blank || y.Blank
}

// Render cuts rect out of img, then applies the optional blur and downscale.
func (p ImageProcessor) Render(img image.Image, rect image.Rectangle) image.Image {
	out := imaging.Crop(img, rect.Add(img.Bounds().Min))

	if p.Config.BlurSigma > 0 {
		out = imaging.Blur(out, p.Config.BlurSigma)
	}

	if size := p.outputSize(out.Bounds().Size()); size != out.Bounds().Size() {
		out = imaging.Resize(out, size.X, size.Y, imaging.Gaussian)
	}

	return out
}

func (p ImageProcessor) outputSize(size image.Point) image.Point {
	factor := p.Config.Downscale
	if !(factor > 0) || factor == 1 {
		return size
	}
	return image.Pt(
		max(1, int(math.Floor(float64(size.X)/factor))),
		max(1, int(math.Floor(float64(size.Y)/factor))),
	)
}
