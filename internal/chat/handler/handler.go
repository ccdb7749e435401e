// Package handler exposes the conversational endpoint.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bakery_quote_backend/internal/chat/service"
	"bakery_quote_backend/internal/chat/transport"
	"bakery_quote_backend/platform/httpkit"
)

// Handler handles chat HTTP requests.
type Handler struct {
	svc *service.Service
}

// New creates a new chat handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Chat runs one conversational turn. Once the body parses, the response is
// always 200 with a reply; failures surface conversationally, not as HTTP
// errors.
// POST /api/chat
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	resp := h.svc.HandleTurn(c.Request.Context(), req.Messages)
	httpkit.OK(c, resp)
}
