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

// ImageScaler fits the image into a maxSize x maxSize box, never enlarging
// it, and re-encodes it at the configured JPEG quality.
type ImageScaler struct {
	tools   *processorcommand.Toolchain
	stats   stats.RuntimeStats
	maxSize int
	quality int
	tempDir string
}

func (this *ImageScaler) Process(ctx context.Context, image *imagefile.ImageFile) error {
	tmp, err := image.CreateTemp(this.tempDir)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	start := time.Now()
	err = this.tools.BoundedResize(ctx, image.GetPath(), tmp.Name(), this.maxSize, this.quality)
	this.stats.ToolTime("convert", time.Since(start))
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return image.SetPath(tmp.Name())
}

func (this *ImageScaler) String() string {
	return fmt.Sprintf("Image scaler <%dx%d q%d>", this.maxSize, this.maxSize, this.quality)
}
