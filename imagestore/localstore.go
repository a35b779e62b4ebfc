package imagestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

var chmod = os.Chmod

// A LocalImageStore stores images in a directory on the local disk.
type LocalImageStore struct {
	storeRoot      string
	namePathMapper *NamePathMapper
}

func NewLocalImageStore(root string, mapper *NamePathMapper) *LocalImageStore {
	return &LocalImageStore{
		storeRoot:      root,
		namePathMapper: mapper,
	}
}

// Prepare creates the store root and its parents. It succeeds if the
// directory already exists.
func (this *LocalImageStore) Prepare() error {
	return os.MkdirAll(this.storeRoot, 0o777)
}

func (this *LocalImageStore) Exists(obj *StoreObject) (bool, error) {
	_, err := os.Stat(this.ToPath(obj))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Save moves src into place with a rename, so readers see either the old
// file or the complete new one, then applies obj.Mode.
func (this *LocalImageStore) Save(src string, obj *StoreObject) (*StoreObject, error) {
	dst := this.ToPath(obj)
	if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return nil, err
	}

	err := os.Rename(src, dst)
	if isCrossDevice(err) {
		err = this.moveAcross(src, dst)
	}
	if err != nil {
		return nil, err
	}

	if err := chmod(dst, obj.Mode); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("set mode %v: %w", obj.Mode, err)
	}

	obj.Url = dst
	return obj, nil
}

func (this *LocalImageStore) ToPath(obj *StoreObject) string {
	return filepath.Join(this.storeRoot, this.namePathMapper.mapToPath(obj))
}

func (this *LocalImageStore) String() string {
	return "LocalStore"
}

// moveAcross copies src next to dst and renames the copy over dst. src is
// removed once the copy is in place.
func (this *LocalImageStore) moveAcross(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	staged, err := os.CreateTemp(filepath.Dir(dst), ".staged-*")
	if err != nil {
		return err
	}
	defer os.Remove(staged.Name())

	if _, err := io.Copy(staged, in); err != nil {
		staged.Close()
		return err
	}
	if err := staged.Close(); err != nil {
		return err
	}

	if err := os.Rename(staged.Name(), dst); err != nil {
		return err
	}

	return os.Remove(src)
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}
