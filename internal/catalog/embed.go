package catalog

import (
	_ "embed"
	"sync"
)

//go:embed components.yaml
var embeddedCatalog []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embeddedCatalog, "embedded:components.yaml")
	})
	return defaultCatalog, defaultErr
}
