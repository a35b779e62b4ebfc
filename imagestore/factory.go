package imagestore

import (
	"github.com/ckauhaus/imageresize/config"
)

type Factory struct {
	conf *config.Configuration
}

func NewFactory(conf *config.Configuration) *Factory {
	return &Factory{conf}
}

func (this *Factory) NewImageStore() ImageStore {
	mapper := NewNamePathMapper(DefaultNamePathMap)

	return NewLocalImageStore(this.conf.OutputDir, mapper)
}
