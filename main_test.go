package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	dir      string
	convert  string
	jpegtran string
	tempDir  string
	outDir   string
}

func newCLI(t *testing.T, convertBody string) *cli {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}

	c := &cli{dir: t.TempDir()}
	c.tempDir = filepath.Join(c.dir, "tmp")
	c.outDir = filepath.Join(c.dir, "out", "resized")
	require.NoError(t, os.Mkdir(c.tempDir, 0o755))

	c.convert = filepath.Join(c.dir, "convert")
	c.jpegtran = filepath.Join(c.dir, "jpegtran")
	require.NoError(t, os.WriteFile(c.convert, []byte("#!/bin/sh\n"+convertBody+"\n"), 0o755))
	require.NoError(t, os.WriteFile(c.jpegtran, []byte("#!/bin/sh\nfor a in \"$@\"; do in=\"$a\"; done; cat \"$in\"\n"), 0o755))

	return c
}

func (c *cli) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	args = append([]string{
		"--convert", c.convert,
		"--jpegtran", c.jpegtran,
		"--temp-dir", c.tempDir,
		"-o", c.outDir,
	}, args...)

	code := Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (c *cli) source(t *testing.T, name string, size int) string {
	path := filepath.Join(c.dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o666))
	require.NoError(t, os.Chmod(path, 0o666))
	return path
}

const shrinkTo900 = `for a in "$@"; do out="$a"; done; head -c 900 /dev/zero > "${out#JPEG:}"`

func TestRunCommitsAndSkips(t *testing.T) {
	c := newCLI(t, `case "$(basename "$1")" in
*small*) n=990;;
*) n=900;;
esac
for a in "$@"; do out="$a"; done; head -c $n /dev/zero > "${out#JPEG:}"`)
	big := c.source(t, "photo.png", 1000)
	small := c.source(t, "small.jpg", 1000)

	code, stdout, stderr := c.run(big, small)

	assert.Equal(t, 0, code, stderr)
	photo := filepath.Join(c.outDir, "photo.jpg")
	assert.Equal(t, photo+"\n"+filepath.Join(c.outDir, "small.jpg")+" (skipped) \n", stdout)

	stats, err := os.Stat(photo)
	require.NoError(t, err)
	assert.Equal(t, int64(900), stats.Size())
	assert.Equal(t, os.FileMode(0o666), stats.Mode().Perm())
	assert.NoFileExists(t, filepath.Join(c.outDir, "small.jpg"))

	entries, err := os.ReadDir(c.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunMissingToolExitsBeforeWritingOutput(t *testing.T) {
	c := newCLI(t, shrinkTo900)
	c.convert = filepath.Join(c.dir, "not-installed-convert")
	src := c.source(t, "photo.jpg", 1000)

	code, stdout, stderr := c.run(src)

	assert.Equal(t, 127, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "not-installed-convert")
	assert.NoDirExists(t, c.outDir)
}

func TestRunPropagatesToolExitStatus(t *testing.T) {
	c := newCLI(t, `echo "convert: improper image header" >&2; exit 3`)
	src := c.source(t, "photo.jpg", 1000)

	code, stdout, stderr := c.run(src)

	assert.Equal(t, 3, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "improper image header")
	assert.Contains(t, stderr, c.convert)

	entries, err := os.ReadDir(c.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunMissingInput(t *testing.T) {
	c := newCLI(t, shrinkTo900)

	code, _, stderr := c.run(filepath.Join(c.dir, "nope.jpg"))

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "nope.jpg")
}

func TestRunUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, Run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "FILE")

	stderr.Reset()
	assert.Equal(t, 2, Run(context.Background(), []string{"-q", "150", "a.jpg"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "quality")

	stderr.Reset()
	assert.Equal(t, 0, Run(context.Background(), []string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage:")
	assert.Empty(t, stdout.String())
}
