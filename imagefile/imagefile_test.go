package imagefile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, size int, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestOpenRecordsSourceMetadata(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits")
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "photo.png", 1234, 0o754)

	img, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, "photo", img.GetFilename())
	assert.Equal(t, path, img.GetSourcePath())
	assert.Equal(t, path, img.GetPath())
	assert.Equal(t, int64(1234), img.SourceSize())
	assert.Equal(t, os.FileMode(0o644), img.Mode())
}

func TestOpenStripsOnlyTheLastExtension(t *testing.T) {
	dir := t.TempDir()

	img, err := Open(writeFile(t, dir, "holiday.2019.JPEG", 1, 0o644))
	require.NoError(t, err)
	assert.Equal(t, "holiday.2019", img.GetFilename())

	img, err = Open(writeFile(t, dir, ".jpg", 1, 0o644))
	require.NoError(t, err)
	assert.Equal(t, ".jpg", img.GetFilename())
}

func TestOpenRejectsMissingAndDirectories(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.jpg"))
	assert.True(t, os.IsNotExist(err))

	_, err = Open(dir)
	assert.Error(t, err)
}

func TestSetPathRemovesPreviousArtifactButNotSource(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "photo.jpg", 10, 0o644)

	img, err := Open(source)
	require.NoError(t, err)

	first, err := img.CreateTemp(dir)
	require.NoError(t, err)
	first.Close()
	require.NoError(t, img.SetPath(first.Name()))
	assert.FileExists(t, source)

	second, err := img.CreateTemp(dir)
	require.NoError(t, err)
	second.Close()
	require.NoError(t, img.SetPath(second.Name()))
	assert.NoFileExists(t, first.Name())
	assert.Equal(t, second.Name(), img.GetPath())

	require.NoError(t, img.Cleanup())
	assert.NoFileExists(t, second.Name())
	assert.FileExists(t, source)
	assert.Equal(t, source, img.GetPath())
}

func TestReleaseKeepsArtifact(t *testing.T) {
	dir := t.TempDir()
	img, err := Open(writeFile(t, dir, "photo.jpg", 10, 0o644))
	require.NoError(t, err)

	tmp, err := img.CreateTemp(dir)
	require.NoError(t, err)
	tmp.Close()
	require.NoError(t, img.SetPath(tmp.Name()))

	released := img.Release()
	require.NoError(t, img.Cleanup())

	assert.Equal(t, tmp.Name(), released)
	assert.FileExists(t, released)
}

func TestCreateTempIsNamedAfterSource(t *testing.T) {
	dir := t.TempDir()
	img, err := Open(writeFile(t, dir, "photo.png", 10, 0o644))
	require.NoError(t, err)

	tmp, err := img.CreateTemp(dir)
	require.NoError(t, err)
	defer os.Remove(tmp.Name())
	tmp.Close()

	base := filepath.Base(tmp.Name())
	assert.Regexp(t, `^photo-.+\.jpg$`, base)

	require.NoError(t, os.WriteFile(tmp.Name(), make([]byte, 42), 0o600))
	require.NoError(t, img.SetPath(tmp.Name()))
	size, err := img.FileSize()
	require.NoError(t, err)
	assert.Equal(t, int64(42), size)
}
