package domain

// ModelDescriptor is one inference backend variant offered by the model catalog.
// Only ID and Name are guaranteed; the rest is filled when the catalog sends it.
type ModelDescriptor struct {
	ID                string `json:"id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`
	MaxTokens         int    `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	SupportsReasoning bool   `json:"supports_reasoning,omitempty" yaml:"supports_reasoning,omitempty"`
	SupportsTools     bool   `json:"supports_tools,omitempty" yaml:"supports_tools,omitempty"`
}

// DisplayName prefers the human name and falls back to the id.
func (m ModelDescriptor) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// FindModel looks a descriptor up by id.
func FindModel(models []ModelDescriptor, id string) (ModelDescriptor, bool) {
	for _, model := range models {
		if model.ID == id {
			return model, true
		}
	}
	return ModelDescriptor{}, false
}
