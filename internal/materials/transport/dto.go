// Package transport defines the HTTP DTOs for the materials module.
package transport

import "bakery_quote_backend/internal/pricing"

// UpdateMaterialRequest changes the price of one existing material.
type UpdateMaterialRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
}

// ListMaterialsResponse wraps the full price list.
type ListMaterialsResponse struct {
	Materials []pricing.Material `json:"materials"`
}
