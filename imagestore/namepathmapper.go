package imagestore

import (
	"strings"
)

// DefaultNamePathMap stores every image as <name>.jpg.
const DefaultNamePathMap = "${ImageName}.jpg"

type NamePathMapper struct {
	replace string
}

func NewNamePathMapper(mapping string) *NamePathMapper {
	return &NamePathMapper{mapping}
}

func (this *NamePathMapper) mapToPath(obj *StoreObject) string {
	return strings.Replace(this.replace, "${ImageName}", obj.Name, -1)
}
