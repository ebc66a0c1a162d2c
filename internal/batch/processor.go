// Package batch drives the stats computation over a directory of mesh files.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"glbstats/internal/asset"
	"glbstats/internal/catalog"
	"glbstats/internal/config"
	"glbstats/internal/logger"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Dir       string
	Extension string
	Catalog   catalog.Map // nil when no catalog was supplied
	Policy    string      // config.PolicyAbort or config.PolicyContinue
	Progress  io.Writer   // nil disables the progress bar
}

// FileError names the file a per-file failure came from.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to process %s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Result holds the outcome of a run. Records are in file-name order.
type Result struct {
	Records  []asset.Record
	Failures []*FileError
	Total    int
}

// Run processes every matching file in cfg.Dir, one at a time. Under the
// abort policy the first failure is returned as a *FileError and no
// records are returned. Under the continue policy failures are collected
// and the records of the remaining files are still returned.
func Run(ctx context.Context, cfg Config) (Result, error) {
	ext := cfg.Extension
	if ext == "" {
		ext = ".glb"
	}
	files, err := Discover(cfg.Dir, ext)
	if err != nil {
		return Result{}, err
	}

	res := Result{Total: len(files)}
	bar := NewProgress(cfg.Progress, len(files))
	defer bar.Done()

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		name := filepath.Base(path)
		rec, err := Collect(path, cfg.Catalog)
		if err != nil {
			fe := &FileError{Name: name, Err: err}
			if cfg.Policy != config.PolicyContinue {
				return Result{}, fe
			}
			logger.Warn("skipping file", zap.String("asset", name), zap.Error(err))
			res.Failures = append(res.Failures, fe)
		} else {
			res.Records = append(res.Records, rec)
		}
		bar.Update(i+1, name)
	}
	return res, nil
}

// Failed reports whether any file failed under the continue policy.
func (r Result) Failed() bool {
	return len(r.Failures) > 0
}

// IsInputError reports whether err happened before any file was processed.
func IsInputError(err error) bool {
	return errors.Is(err, ErrNotDirectory) || errors.Is(err, ErrNoInputs)
}
