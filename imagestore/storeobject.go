package imagestore

import "os"

type StoreObject struct {
	Name string      // source base name without extension
	Mode os.FileMode // permission bits for the stored file
	Url  string      // where it was stored
}
