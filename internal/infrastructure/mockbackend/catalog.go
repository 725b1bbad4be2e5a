package mockbackend

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/unlp/assets"
	"github.com/doeshing/unlp/internal/domain"
)

type catalogFile struct {
	Default string                   `yaml:"default"`
	Models  []domain.ModelDescriptor `yaml:"models"`
}

// Catalog is the model list served on /api/models, in display order.
var Catalog []domain.ModelDescriptor

// DefaultModelID is served when a request names no model or an unknown one.
var DefaultModelID string

func init() {
	file, err := parseCatalog(assets.MockCatalogYAML)
	if err != nil {
		panic(err)
	}
	Catalog = file.Models
	DefaultModelID = file.Default
}

func parseCatalog(raw []byte) (catalogFile, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return file, fmt.Errorf("parse mock catalog: %w", err)
	}
	if len(file.Models) == 0 {
		return file, fmt.Errorf("parse mock catalog: no models")
	}
	if _, ok := domain.FindModel(file.Models, file.Default); !ok {
		return file, fmt.Errorf("parse mock catalog: default %q is not listed", file.Default)
	}
	return file, nil
}

// lookupModel returns the descriptor for id, falling back to the default model.
func lookupModel(id string) domain.ModelDescriptor {
	if model, ok := domain.FindModel(Catalog, id); ok {
		return model
	}
	model, _ := domain.FindModel(Catalog, DefaultModelID)
	return model
}
