package models

// ErrorResponse is the uniform error envelope returned by all handlers.
type ErrorResponse struct {
	Message string `json:"message"`
}
