package processorcommand

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrTimedOut is the cause of a ToolError when a command outlived its timeout.
var ErrTimedOut = errors.New("command timed out")

// ToolError reports an external tool that could not be started or exited
// unsuccessfully.
type ToolError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	cmdline := strings.Join(append([]string{e.Command}, e.Args...), " ")
	msg := fmt.Sprintf("%s: %v", cmdline, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func newToolError(command string, args []string, stderr string, err error) *ToolError {
	code := 1
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr) && exitErr.ExitCode() > 0:
		code = exitErr.ExitCode()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		code = 127
	}

	return &ToolError{
		Command:  command,
		Args:     args,
		ExitCode: code,
		Stderr:   strings.TrimSpace(stderr),
		Err:      err,
	}
}

// runProcessorCommand runs command to completion. Its standard output goes to
// stdout, or is dropped when stdout is nil. A zero timeout waits forever.
func runProcessorCommand(ctx context.Context, logger *slog.Logger, timeout time.Duration, command string, args []string, stdout io.Writer) error {
	cmd := exec.Command(command, args...)

	var stderr bytes.Buffer
	if stdout == nil {
		stdout = io.Discard
	}
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	logger.Debug("running command", "command", command, "args", args)

	if err := cmd.Start(); err != nil {
		return newToolError(command, args, "", err)
	}

	cmdDone := make(chan error, 1)
	go func() {
		cmdDone <- cmd.Wait()
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-ctx.Done():
		killCmd(logger, cmd)
		<-cmdDone
		return newToolError(command, args, stderr.String(), ctx.Err())
	case <-expired:
		killCmd(logger, cmd)
		<-cmdDone
		return newToolError(command, args, stderr.String(), ErrTimedOut)
	case err := <-cmdDone:
		if err != nil {
			return newToolError(command, args, stderr.String(), err)
		}
		if stderr.Len() > 0 {
			logger.Debug("command stderr", "command", command, "stderr", strings.TrimSpace(stderr.String()))
		}
		return nil
	}
}

func killCmd(logger *slog.Logger, cmd *exec.Cmd) {
	if err := cmd.Process.Kill(); err != nil {
		logger.Warn("failed to kill command", "command", cmd.Path, "error", err)
	}
}
