package seed

import "embed"

// DefaultCatalogPath is the embedded catalog file name.
const DefaultCatalogPath = "catalog.yaml"

// DefaultCatalog embeds the stock objective catalog.
//
//go:embed catalog.yaml
var DefaultCatalog embed.FS
