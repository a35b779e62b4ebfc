package imageprocessor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ckauhaus/imageresize/imagefile"
	"github.com/ckauhaus/imageresize/imageprocessor/processorcommand"
	"github.com/ckauhaus/imageresize/stats"
)

type CompressLosslessly struct {
	tools   *processorcommand.Toolchain
	stats   stats.RuntimeStats
	tempDir string
}

// Process captures the optimizer's output in a fresh temp file, which then
// replaces (and removes) the previous artifact.
func (this *CompressLosslessly) Process(ctx context.Context, image *imagefile.ImageFile) error {
	out, err := image.CreateTemp(this.tempDir)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	start := time.Now()
	err = this.tools.Jpegtran(ctx, image.GetPath(), out)
	this.stats.ToolTime("jpegtran", time.Since(start))

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(out.Name())
		return err
	}

	return image.SetPath(out.Name())
}

func (this *CompressLosslessly) String() string {
	return "Lossless JPEG compressor"
}
