package imageprocessor

import (
	"context"
	"fmt"
	"strings"

	"github.com/ckauhaus/imageresize/config"
	"github.com/ckauhaus/imageresize/imagefile"
	"github.com/ckauhaus/imageresize/imageprocessor/processorcommand"
	"github.com/ckauhaus/imageresize/stats"
)

// ProcessType is one step of the pipeline. A step reads image.GetPath() and
// hands its result back through image.SetPath.
type ProcessType interface {
	Process(ctx context.Context, image *imagefile.ImageFile) error
	String() string
}

type multiProcessType []ProcessType

// Process runs the steps in order and stops at the first failure.
func (this multiProcessType) Process(ctx context.Context, image *imagefile.ImageFile) error {
	for _, processor := range this {
		if err := processor.Process(ctx, image); err != nil {
			return fmt.Errorf("%s: %w", processor.String(), err)
		}
	}

	return nil
}

func (this multiProcessType) String() string {
	processes := make([]string, 0, len(this))
	for _, p := range this {
		processes = append(processes, p.String())
	}
	return "Multiple processes <" + strings.Join(processes, ", ") + ">"
}

type ImageProcessor struct {
	processor ProcessType
}

func (this *ImageProcessor) Run(ctx context.Context, image *imagefile.ImageFile) error {
	return this.processor.Process(ctx, image)
}

func (this *ImageProcessor) String() string {
	return this.processor.String()
}

type ImageProcessorStrategy func(*config.Configuration, *imagefile.ImageFile) (*ImageProcessor, error)

// NewResizeStrategy shrinks and re-encodes with the resize tool, then
// rewrites the result losslessly as an optimized progressive JPEG.
func NewResizeStrategy(tools *processorcommand.Toolchain, st stats.RuntimeStats) ImageProcessorStrategy {
	if st == nil {
		st = &stats.DiscardStats{}
	}

	return func(cfg *config.Configuration, file *imagefile.ImageFile) (*ImageProcessor, error) {
		processor := multiProcessType{}
		processor = append(processor, &ImageScaler{
			tools:   tools,
			stats:   st,
			maxSize: cfg.MaxSize,
			quality: cfg.Quality,
			tempDir: cfg.TempDir,
		})
		processor = append(processor, &CompressLosslessly{
			tools:   tools,
			stats:   st,
			tempDir: cfg.TempDir,
		})

		return &ImageProcessor{processor}, nil
	}
}
