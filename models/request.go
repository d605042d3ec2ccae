package models

// GenerationRequest is the canonical body of POST /api/generation.
type GenerationRequest struct {
	InputText string            `json:"input_text"`
	Tags      []string          `json:"tags"`
	Contexts  map[string]string `json:"contexts"`
	Tweets    []Item            `json:"tweets"`
}

// AddItemRequest creates a manual item.
type AddItemRequest struct {
	Text string `json:"text"`
}
