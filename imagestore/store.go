package imagestore

// ImageStore is where committed images end up. Save takes ownership of the
// file at src: once it returns successfully src is gone.
type ImageStore interface {
	Prepare() error
	Save(src string, obj *StoreObject) (*StoreObject, error)
	Exists(obj *StoreObject) (bool, error)
	ToPath(obj *StoreObject) string
}
