package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Z3belek/cpar/cmd/config"
	apperrors "github.com/Z3belek/cpar/cmd/errors"
	"github.com/Z3belek/cpar/cmd/logger"
	"github.com/Z3belek/cpar/cmd/processor"
)

var flagAliases = map[string]string{
	"xt": "x-threshold",
	"yt": "y-threshold",
	"xp": "x-percentile",
	"yp": "y-percentile",
	"ex": "x-extra",
	"ey": "y-extra",
}

func aliasNormalizer(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if full, ok := flagAliases[name]; ok {
		name = full
	}
	return pflag.NormalizedName(name)
}

// NewRootCmd builds the cpar command.
func NewRootCmd() *cobra.Command {
	var (
		params     = config.NewFlags()
		xThreshold int
		yThreshold int
		xPercent   float64
		yPercent   float64
		xExtra     int
		yExtra     int
		blur       float64
		logLevel   string
		logFormat  string
	)

	rootCmd := &cobra.Command{
		Use:   "cpar [OPTIONS] <SOURCE>... <OUTPUT>",
		Short: "Crop Preserving Aspect Ratio",
		Long: `Crops the whitespace margins off scanned artwork and restores each
image to its original aspect ratio, writing the results into OUTPUT.

SOURCE may be image files or directories, which are searched recursively.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Configure(logLevel, logFormat); err != nil {
				return apperrors.NewConfigError("configuring logging", err)
			}

			flags := cmd.Flags()
			params.XThreshold = config.Override[int]{Value: xThreshold, Set: flags.Changed("x-threshold")}
			params.YThreshold = config.Override[int]{Value: yThreshold, Set: flags.Changed("y-threshold")}
			params.XPercentile = config.Override[float64]{Value: xPercent, Set: flags.Changed("x-percentile")}
			params.YPercentile = config.Override[float64]{Value: yPercent, Set: flags.Changed("y-percentile")}
			params.XExtra = config.Override[int]{Value: xExtra, Set: flags.Changed("x-extra")}
			params.YExtra = config.Override[int]{Value: yExtra, Set: flags.Changed("y-extra")}
			params.Blur = config.Override[float64]{Value: blur, Set: flags.Changed("blur")}

			cfg, err := params.Resolve()
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"x":    cfg.X,
				"y":    cfg.Y,
				"jobs": cfg.Jobs,
			}).Debug("resolved configuration")

			summary, err := processor.Run(cmd.Context(), processor.Batch{
				Sources:   args[:len(args)-1],
				OutputDir: args[len(args)-1],
				Config:    cfg,
			})

			if summary.Total == 0 {
				return err
			}

			logger.WithFields(logrus.Fields{
				"total":     summary.Total,
				"succeeded": summary.Succeeded,
				"failed":    summary.Failed,
				"clamped":   summary.Clamped,
			}).Info("batch finished")

			return err
		},
	}

	f := rootCmd.Flags()
	f.SortFlags = false

	f.IntVarP(&params.Threshold, "threshold", "t", config.DefaultThreshold, "luminance (0-255) at or above which a pixel counts as whitespace, both axes")
	f.IntVar(&xThreshold, "x-threshold", config.DefaultThreshold, "threshold for the x-axis (alias --xt)")
	f.IntVar(&yThreshold, "y-threshold", config.DefaultThreshold, "threshold for the y-axis (alias --yt)")

	f.Float64VarP(&params.Percentile, "percentile", "p", config.DefaultPercentile, "percentage of whitespace pixels a row/column needs to be cropped, both axes")
	f.Float64Var(&xPercent, "x-percentile", config.DefaultPercentile, "percentile for the x-axis (alias --xp)")
	f.Float64Var(&yPercent, "y-percentile", config.DefaultPercentile, "percentile for the y-axis (alias --yp)")

	f.IntVarP(&params.Extra, "extra", "e", config.DefaultExtra, "extra pixels to crop beyond the right and bottom edges")
	f.IntVar(&xExtra, "x-extra", config.DefaultExtra, "extra margin beyond the right edge (alias --ex)")
	f.IntVar(&yExtra, "y-extra", config.DefaultExtra, "extra margin beyond the bottom edge (alias --ey)")

	f.Float64VarP(&blur, "blur", "b", 0, "blur the result by this Gaussian sigma (no blur when omitted or 0)")
	f.Float64VarP(&params.Downscale, "downscale", "d", config.DefaultDownscale, "downscale the result by this factor")

	f.IntVarP(&params.Jobs, "jobs", "j", 0, "number of images processed in parallel (0 uses every CPU)")
	f.IntVarP(&params.Quality, "quality", "q", config.DefaultQuality, "JPEG output quality (1-100)")
	f.BoolVar(&params.DryRun, "dry-run", false, "report the crop of every image without writing anything")

	f.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default from LOG_LEVEL, else info)")
	f.StringVar(&logFormat, "log-format", "text", "log format: text or json")

	f.SetNormalizeFunc(aliasNormalizer)

	return rootCmd
}

// Execute runs cpar against the process arguments. It returns the process
// exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.WithError(err).Error("cpar failed")
		return 1
	}
	return 0
}
