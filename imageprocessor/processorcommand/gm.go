package processorcommand

import (
	"context"
	"fmt"
)

// BoundedResize writes a JPEG re-encoded at quality to outfile, shrunk so that
// neither side exceeds maxSize. Images already within bounds keep their
// geometry.
func (t *Toolchain) BoundedResize(ctx context.Context, filename, outfile string, maxSize, quality int) error {
	args := []string{
		filename,
		"-resize",
		fmt.Sprintf("%dx%d>", maxSize, maxSize),
		"-quality",
		fmt.Sprintf("%d", quality),
		"JPEG:" + outfile,
	}

	return runProcessorCommand(ctx, t.logger, t.Timeout, t.ConvertPath, args, nil)
}
