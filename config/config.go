package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	DefaultOutputDir = "resized"
	DefaultMaxSize   = 3840
	DefaultQuality   = 80
)

type Configuration struct {
	OutputDir string
	MaxSize   int
	Quality   int
	Files     []string

	ConvertPath     string
	JpegtranPath    string
	TempDir         string
	Timeout         time.Duration
	DatadogHostname string
	LogLevel        slog.Level
}

// UsageError is returned for command lines that cannot be run.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{fmt.Sprintf(format, args...)}
}

// NewConfiguration parses the command line args (without the program name).
// Flags may be mixed with input files; "--" ends flag parsing. It returns
// flag.ErrHelp when help was requested.
func NewConfiguration(args []string, stderr io.Writer) (*Configuration, error) {
	cfg := &Configuration{}
	verbose := false

	fs := flag.NewFlagSet("imageresize", flag.ContinueOnError)
	fs.SetOutput(stderr)

	stringVar(fs, &cfg.OutputDir, "o", "output-dir", DefaultOutputDir, "write resized images to `DIR`")
	intVar(fs, &cfg.MaxSize, "m", "max-size", DefaultMaxSize, "rescale images so that the longest dimension is no more than `SIZE` pixels")
	intVar(fs, &cfg.Quality, "q", "quality", DefaultQuality, "JPEG compression quality (1..100) in `PERCENT`")
	boolVar(fs, &verbose, "v", "verbose", false, "log every command to stderr")
	fs.StringVar(&cfg.ConvertPath, "convert", valueOrDefault(os.Getenv("IMAGERESIZE_CONVERT"), "convert"), "resize tool `PATH`")
	fs.StringVar(&cfg.JpegtranPath, "jpegtran", valueOrDefault(os.Getenv("IMAGERESIZE_JPEGTRAN"), "jpegtran"), "lossless JPEG optimizer `PATH`")
	fs.StringVar(&cfg.TempDir, "temp-dir", os.TempDir(), "keep intermediate files in `DIR`")
	fs.DurationVar(&cfg.Timeout, "timeout", 0, "kill a tool that runs longer than `DURATION` (0 waits forever)")
	fs.StringVar(&cfg.DatadogHostname, "statsd", os.Getenv("DATADOG_HOST"), "send metrics to the dogstatsd agent on `HOST`")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: imageresize [flags] FILE...\n\nResizes and recompresses JPEG images.\n\nflags:\n")
		fs.PrintDefaults()
	}

	files, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, &UsageError{err.Error()}
	}
	cfg.Files = files

	cfg.LogLevel = parseLogLevel(os.Getenv("LOG_LEVEL"))
	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the ranges of all settings.
func (c *Configuration) Validate() error {
	if len(c.Files) == 0 {
		return usageErrorf("at least one FILE is required")
	}
	if c.MaxSize <= 0 {
		return usageErrorf("max-size must be a positive integer, got %d", c.MaxSize)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return usageErrorf("quality value must be between 1 and 100, got %d", c.Quality)
	}
	if c.Timeout < 0 {
		return usageErrorf("timeout must not be negative")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return usageErrorf("output-dir must not be empty")
	}

	return nil
}

func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	args, tail := splitTerminator(fs, args)

	var files []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		rest := fs.Args()
		if len(rest) == 0 {
			return append(files, tail...), nil
		}

		files = append(files, rest[0])
		args = rest[1:]
	}
}

// splitTerminator cuts args at the first standalone "--". A "--" given as the
// value of a flag does not count.
func splitTerminator(fs *flag.FlagSet, args []string) ([]string, []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			return args[:i], args[i+1:]
		}
		if takesValue(fs, args[i]) {
			i++
		}
	}

	return args, nil
}

// takesValue reports whether arg is a flag whose value is the next argument.
func takesValue(fs *flag.FlagSet, arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}

	name := strings.TrimPrefix(arg[1:], "-")
	if strings.Contains(name, "=") {
		return false
	}

	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return false
	}

	return true
}

func stringVar(fs *flag.FlagSet, p *string, short, long, value, usage string) {
	fs.StringVar(p, long, value, usage)
	fs.StringVar(p, short, value, "shorthand for -"+long)
}

func intVar(fs *flag.FlagSet, p *int, short, long string, value int, usage string) {
	fs.IntVar(p, long, value, usage)
	fs.IntVar(p, short, value, "shorthand for -"+long)
}

func boolVar(fs *flag.FlagSet, p *bool, short, long string, value bool, usage string) {
	fs.BoolVar(p, long, value, usage)
	fs.BoolVar(p, short, value, "shorthand for -"+long)
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
