package processorcommand

import (
	"context"
	"io"
)

// Jpegtran losslessly rewrites filename as an optimized progressive JPEG
// and streams the result to out. All markers, EXIF orientation included,
// are carried over.
func (t *Toolchain) Jpegtran(ctx context.Context, filename string, out io.Writer) error {
	args := []string{
		"-copy",
		"all",
		"-optimize",
		"-progressive",
		filename,
	}

	return runProcessorCommand(ctx, t.logger, t.Timeout, t.JpegtranPath, args, out)
}
