// Package dto defines request and response shapes for the HTTP API.
package dto

// IDResponse returns an entity ID after creation.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success confirmation.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
