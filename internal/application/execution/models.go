package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/doeshing/unlp/internal/domain"
)

// RefreshModels fetches the catalog once. A failure is logged and leaves the list
// empty: selection becomes unavailable, submission keeps working with the current id.
func (m *Machine) RefreshModels(ctx context.Context) ([]domain.ModelDescriptor, error) {
	if m.Catalog == nil {
		return nil, errors.New("no model catalog configured")
	}
	models, err := m.Catalog.ListModels(ctx)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Warn("failed to fetch models", map[string]interface{}{"error": err.Error()})
		}
		m.SetModels(nil)
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	m.SetModels(models)
	if m.Logger != nil {
		m.Logger.Debug("model catalog loaded", map[string]interface{}{"count": len(models)})
	}
	return models, nil
}

// SetModels replaces the catalog snapshot.
func (m *Machine) SetModels(models []domain.ModelDescriptor) {
	m.mu.Lock()
	m.models = append([]domain.ModelDescriptor(nil), models...)
	m.mu.Unlock()
}

// Models returns the catalog snapshot.
func (m *Machine) Models() []domain.ModelDescriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ModelDescriptor(nil), m.models...)
}

// SelectModel changes the model used by the next submission. With a catalog
// loaded, unknown ids are rejected with the closest known id as a hint.
func (m *Machine) SelectModel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		return fmt.Errorf("%w: empty id", domain.ErrUnknownModel)
	}
	if len(m.models) > 0 {
		if _, ok := domain.FindModel(m.models, id); !ok {
			if hint := closestModel(m.models, id); hint != "" {
				return fmt.Errorf("%w: %s (did you mean %s?)", domain.ErrUnknownModel, id, hint)
			}
			return fmt.Errorf("%w: %s", domain.ErrUnknownModel, id)
		}
	}
	m.selected = id
	return nil
}

// SelectedModel returns the descriptor for the next submission.
func (m *Machine) SelectedModel() domain.ModelDescriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedLocked()
}

func (m *Machine) selectedLocked() domain.ModelDescriptor {
	id := m.selected
	if id == "" {
		id = domain.DefaultModelID
	}
	if model, ok := domain.FindModel(m.models, id); ok {
		return model
	}
	return domain.ModelDescriptor{ID: id, Name: id}
}

func closestModel(models []domain.ModelDescriptor, id string) string {
	best, bestDist := "", -1
	for _, model := range models {
		d := levenshtein.ComputeDistance(id, model.ID)
		if bestDist < 0 || d < bestDist {
			best, bestDist = model.ID, d
		}
	}
	limit := len(id) / 3
	if limit < 3 {
		limit = 3
	}
	if bestDist > limit {
		return ""
	}
	return best
}
