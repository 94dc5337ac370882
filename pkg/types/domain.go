package types

// ModelVariant describes one selectable size of the text-to-image model.
type ModelVariant struct {
	// Canonical variant name.
	// example: Mini
	Name string `json:"name" example:"Mini"`
	// Model identifier sent to the model server.
	// example: dalle-mini/dalle-mini/mini-1:v0
	BackendModel string `json:"backend_model" example:"dalle-mini/dalle-mini/mini-1:v0"`
}
