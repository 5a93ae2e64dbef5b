package dto

// Envelope is the body of every JSON response.
type Envelope struct {
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
