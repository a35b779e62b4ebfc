package imagestore

import (
	"os"
	"sync"
)

type InMemoryImageStore struct {
	mu    sync.Mutex
	files map[string]string // name -> contents
	modes map[string]os.FileMode
}

func NewInMemoryImageStore() *InMemoryImageStore {
	return &InMemoryImageStore{
		files: make(map[string]string),
		modes: make(map[string]os.FileMode),
	}
}

func (this *InMemoryImageStore) Prepare() error {
	return nil
}

func (this *InMemoryImageStore) Exists(obj *StoreObject) (bool, error) {
	this.mu.Lock()
	defer this.mu.Unlock()

	_, ok := this.files[obj.Name]

	return ok, nil
}

func (this *InMemoryImageStore) Save(src string, obj *StoreObject) (*StoreObject, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(src); err != nil {
		return nil, err
	}

	this.mu.Lock()
	this.files[obj.Name] = string(data)
	this.modes[obj.Name] = obj.Mode
	this.mu.Unlock()

	obj.Url = this.ToPath(obj)
	return obj, nil
}

// Mode returns the permission bits the image was saved with.
func (this *InMemoryImageStore) Mode(obj *StoreObject) os.FileMode {
	this.mu.Lock()
	defer this.mu.Unlock()

	return this.modes[obj.Name]
}

func (this *InMemoryImageStore) ToPath(obj *StoreObject) string {
	return "memory://" + obj.Name + ".jpg"
}
