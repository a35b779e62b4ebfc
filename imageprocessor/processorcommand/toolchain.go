package processorcommand

import (
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

const (
	GM_COMMAND       = "convert"
	JPEGTRAN_COMMAND = "jpegtran"
)

// Toolchain locates and runs the external image tools.
type Toolchain struct {
	ConvertPath  string
	JpegtranPath string
	// Timeout bounds every single command. Zero means no limit.
	Timeout time.Duration

	logger *slog.Logger
}

func NewToolchain(convertPath, jpegtranPath string, timeout time.Duration, logger *slog.Logger) *Toolchain {
	if convertPath == "" {
		convertPath = GM_COMMAND
	}
	if jpegtranPath == "" {
		jpegtranPath = JPEGTRAN_COMMAND
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Toolchain{
		ConvertPath:  convertPath,
		JpegtranPath: jpegtranPath,
		Timeout:      timeout,
		logger:       logger,
	}
}

// Check makes sure every tool can be found before any work starts.
func (t *Toolchain) Check() error {
	for _, command := range []string{t.ConvertPath, t.JpegtranPath} {
		if _, err := exec.LookPath(command); err != nil {
			return newToolError(command, nil, "", fmt.Errorf("tool not available: %w", err))
		}
	}

	return nil
}
