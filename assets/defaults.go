// Package assets embeds the files unlp ships with.
package assets

import _ "embed"

var (
	// DefaultConfigYAML seeds ~/.unlp/config.yaml on first run and on `config reset`.
	//
	//go:embed defaults/config.yaml
	DefaultConfigYAML []byte

	// MockCatalogYAML is the model list the mock backend serves.
	//
	//go:embed defaults/models.yaml
	MockCatalogYAML []byte
)
