// Package imagefile tracks one input image and the temporary artifact
// currently standing in for it while it is processed.
package imagefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PermMask keeps the read and write bits for owner, group and other.
const PermMask os.FileMode = 0o666

type ImageFile struct {
	filename string
	source   string
	size     int64
	mode     os.FileMode

	// path is the current working artifact. It equals source until a
	// processing step produces a temporary file.
	path string
}

// Open records the metadata of the source image at path. The source must be
// a readable regular file.
func Open(path string) (*ImageFile, error) {
	stats, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !stats.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	f.Close()

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		// dotfiles such as ".jpg" have no extension
		name = base
	}

	return &ImageFile{
		filename: name,
		source:   path,
		size:     stats.Size(),
		mode:     stats.Mode().Perm() & PermMask,
		path:     path,
	}, nil
}

// GetFilename returns the source's base name without its extension.
func (this *ImageFile) GetFilename() string {
	return this.filename
}

func (this *ImageFile) GetSourcePath() string {
	return this.source
}

func (this *ImageFile) GetPath() string {
	return this.path
}

// SourceSize is the size of the source in bytes, as seen by Open.
func (this *ImageFile) SourceSize() int64 {
	return this.size
}

// Mode is the source's permission bits masked with PermMask.
func (this *ImageFile) Mode() os.FileMode {
	return this.mode
}

// SetPath makes path the working artifact and removes the previous one.
// The source itself is never removed.
func (this *ImageFile) SetPath(path string) error {
	previous := this.path
	this.path = path

	if previous == this.source || previous == path {
		return nil
	}
	if err := os.Remove(previous); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// Release hands the working artifact over to the caller. Afterwards Cleanup
// leaves it alone.
func (this *ImageFile) Release() string {
	path := this.path
	this.path = this.source

	return path
}

// Cleanup removes the working artifact if one is still owned.
func (this *ImageFile) Cleanup() error {
	return this.SetPath(this.source)
}

// CreateTemp opens a new, empty artifact in dir named after the source. The
// .jpg suffix lets the resize tool pick its encoder from the name.
func (this *ImageFile) CreateTemp(dir string) (*os.File, error) {
	return os.CreateTemp(dir, this.filename+"-*.jpg")
}

// FileSize reports the size of the current working artifact.
func (this *ImageFile) FileSize() (int64, error) {
	stats, err := os.Stat(this.path)
	if err != nil {
		return 0, err
	}

	return stats.Size(), nil
}
