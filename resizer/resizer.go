// Package resizer drives the resize pipeline over a batch of images and
// decides, per image, whether the optimized result is worth keeping.
package resizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ckauhaus/imageresize/config"
	"github.com/ckauhaus/imageresize/imagefile"
	"github.com/ckauhaus/imageresize/imageprocessor"
	"github.com/ckauhaus/imageresize/imageprocessor/processorcommand"
	"github.com/ckauhaus/imageresize/imagestore"
	"github.com/ckauhaus/imageresize/stats"
)

// A result is kept only when it is smaller than 19/20 (95%) of the source.
const (
	thresholdNumerator   = 19
	thresholdDenominator = 20
)

// FilesystemError reports a failed operation on the input, the temp area or
// the output directory.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

type Result struct {
	Source     string
	Output     string
	SourceSize int64
	OutputSize int64
	Committed  bool
}

// Status is the line reported for the result on standard output.
func (r *Result) Status() string {
	if r.Committed {
		return r.Output
	}
	return r.Output + " (skipped) "
}

type BatchResizer struct {
	cfg      *config.Configuration
	store    imagestore.ImageStore
	tools    *processorcommand.Toolchain
	strategy imageprocessor.ImageProcessorStrategy
	stats    stats.RuntimeStats
	logger   *slog.Logger
	out      io.Writer
}

func New(cfg *config.Configuration, store imagestore.ImageStore, tools *processorcommand.Toolchain, strategy imageprocessor.ImageProcessorStrategy, st stats.RuntimeStats, logger *slog.Logger, out io.Writer) *BatchResizer {
	if st == nil {
		st = &stats.DiscardStats{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchResizer{
		cfg:      cfg,
		store:    store,
		tools:    tools,
		strategy: strategy,
		stats:    st,
		logger:   logger,
		out:      out,
	}
}

// Prepare fails early when a tool is missing and creates the output
// directory otherwise.
func (this *BatchResizer) Prepare(ctx context.Context) error {
	if this.tools != nil {
		if err := this.tools.Check(); err != nil {
			this.stats.Error("tool")
			return err
		}
	}

	if err := this.store.Prepare(); err != nil {
		this.stats.Error("filesystem")
		return &FilesystemError{"create output directory", this.cfg.OutputDir, err}
	}

	return nil
}

// Run processes files one after another, in order. The first failure stops
// the whole batch.
func (this *BatchResizer) Run(ctx context.Context, files []string) error {
	if err := this.Prepare(ctx); err != nil {
		return err
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := this.Process(ctx, file)
		if err != nil {
			return err
		}

		fmt.Fprintln(this.out, result.Status())
	}

	return nil
}

// Process resizes and optimizes one file and commits the result to the store
// if it is small enough. Temporary files never outlive the call.
func (this *BatchResizer) Process(ctx context.Context, path string) (*Result, error) {
	logger := this.logger.With("file", path)

	image, err := imagefile.Open(path)
	if err != nil {
		this.stats.Error("filesystem")
		return nil, &FilesystemError{"open", path, err}
	}
	defer func() {
		if err := image.Cleanup(); err != nil {
			logger.Warn("failed to remove temporary file", "error", err)
		}
	}()

	obj := &imagestore.StoreObject{
		Name: image.GetFilename(),
		Mode: image.Mode(),
	}
	result := &Result{
		Source:     path,
		Output:     this.store.ToPath(obj),
		SourceSize: image.SourceSize(),
	}

	processor, err := this.strategy(this.cfg, image)
	if err != nil {
		return nil, err
	}

	logger.Debug("processing image", "processor", processor.String(), "size", result.SourceSize)
	if err := processor.Run(ctx, image); err != nil {
		var toolErr *processorcommand.ToolError
		if errors.As(err, &toolErr) {
			this.stats.Error("tool")
			return nil, err
		}
		this.stats.Error("filesystem")
		return nil, &FilesystemError{"process", path, err}
	}

	result.OutputSize, err = image.FileSize()
	if err != nil {
		this.stats.Error("filesystem")
		return nil, &FilesystemError{"stat", image.GetPath(), err}
	}

	if !worthKeeping(result.OutputSize, result.SourceSize) {
		logger.Info("skipping image", "size", result.SourceSize, "optimized", result.OutputSize)
		this.stats.Skipped()
		return result, nil
	}

	if exists, err := this.store.Exists(obj); err != nil {
		logger.Warn("cannot check existing output", "output", result.Output, "error", err)
	} else if exists {
		logger.Debug("replacing existing output", "output", result.Output)
	}

	candidate := image.Release()
	if _, err := this.store.Save(candidate, obj); err != nil {
		if err := image.SetPath(candidate); err != nil {
			logger.Warn("failed to reclaim candidate", "error", err)
		}
		this.stats.Error("filesystem")
		return nil, &FilesystemError{"commit", result.Output, err}
	}

	result.Committed = true
	logger.Info("committed image", "output", result.Output, "size", result.SourceSize, "optimized", result.OutputSize)
	this.stats.Committed()
	this.stats.BytesSaved(result.SourceSize - result.OutputSize)

	return result, nil
}

// worthKeeping reports whether size < 0.95 * original, in integers.
func worthKeeping(size, original int64) bool {
	return size*thresholdDenominator < original*thresholdNumerator
}
