package api

// Model is one entry in the public model listing.
type Model struct {
	ID       string `json:"id"`
	Object   string `json:"object"` // "model"
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
	OwnedBy  string `json:"owned_by"`
}

type ModelList struct {
	Object string  `json:"object"` // "list"
	Data   []Model `json:"data"`
}

// ModelFilter narrows the model listing.
type ModelFilter struct {
	Provider string
	ID       string
}
