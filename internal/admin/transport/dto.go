// Package transport defines the HTTP DTOs for the admin module.
package transport

// LoginRequest carries the shared admin password.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// OKResponse acknowledges a session change.
type OKResponse struct {
	OK bool `json:"ok"`
}
