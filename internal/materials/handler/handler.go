// Package handler exposes the admin material price endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bakery_quote_backend/internal/materials/service"
	"bakery_quote_backend/internal/materials/transport"
	"bakery_quote_backend/platform/httpkit"
	"bakery_quote_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for materials.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new materials handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List retrieves every priced material.
// GET /admin/materials
func (h *Handler) List(c *gin.Context) {
	materials, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ListMaterialsResponse{Materials: materials})
}

// Update creates or replaces a material price.
// POST /admin/materials/update
func (h *Handler) Update(c *gin.Context) {
	var req transport.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	material, err := h.svc.UpdateCost(c.Request.Context(), req.Name, req.UnitCost)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, material)
}
