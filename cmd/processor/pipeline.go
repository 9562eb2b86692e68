package processor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"facette.io/natsort"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Z3belek/cpar/cmd/errors"
	"github.com/Z3belek/cpar/cmd/logger"
)

type FileData struct {
	filepath string
	output   string
}

func resolveSources(paths []string) []string {
	var files []string

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			files = append(files, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.WithError(err).WithField("path", path).Warn("skipping unreadable path")
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			logger.WithError(err).WithField("path", root).Warn("walking source directory")
		}
	}

	files = lo.Uniq(files)
	natsort.Sort(files)

	return files
}

func assignOutputs(sources []string, outputDir string) ([]FileData, []Result) {
	var (
		jobs     []FileData
		rejected []Result
		claimed  = map[string]string{}
	)

	for _, source := range sources {
		name := filepath.Base(source)
		if first, ok := claimed[name]; ok {
			rejected = append(rejected, Result{
				Source: source,
				Err:    apperrors.NewIOError(fmt.Sprintf("output name %q is already used by %s", name, first), nil),
			})
			continue
		}

		claimed[name] = source
		jobs = append(jobs, FileData{
			filepath: source,
			output:   filepath.Join(outputDir, name),
		})
	}

	return jobs, rejected
}

func fileFinder(ctx context.Context, jobs []FileData) <-chan FileData {
	outCh := make(chan FileData, 100)

	go func() {
		defer close(outCh)

		for _, job := range jobs {
			if ctx.Err() != nil {
				return
			}

			select {
			case outCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	return outCh
}

func fileProcess(options ImageProcessor, workers int, inCh <-chan FileData) <-chan Result {
	outCh := make(chan Result, 100)

	wg := sync.WaitGroup{}

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for info := range inCh {
				result := options.Process(info.filepath, info.output)
				logResult(result)
				outCh <- result
			}
		}()
	}

	go func() {
		defer close(outCh)
		wg.Wait()
	}()

	return outCh
}

func logResult(result Result) {
	entry := logger.WithField("source", result.Source)

	if result.Err != nil {
		entry.WithError(result.Err).Warn("skipping file")
		return
	}

	entry = entry.WithFields(logrus.Fields{
		"original": fmt.Sprintf("%dx%d", result.Original.X, result.Original.Y),
		"crop":     result.Crop.String(),
		"size":     fmt.Sprintf("%dx%d", result.Size.X, result.Size.Y),
	})
	if result.Clamped {
		entry.WithError(apperrors.NewGeometryError("no content left after margins", nil)).
			Warn("crop clamped to minimum region")
	}
	if result.Output == "" {
		entry.Info("planned")
		return
	}
	entry.WithField("output", result.Output).Info("processed")
}
