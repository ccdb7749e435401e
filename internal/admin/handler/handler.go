// Package handler exposes the admin session endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bakery_quote_backend/internal/admin/service"
	"bakery_quote_backend/internal/admin/transport"
	"bakery_quote_backend/platform/httpkit"
	"bakery_quote_backend/platform/validator"
)

// Handler handles admin session HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new admin handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Login authenticates the admin and sets the session cookie.
// POST /admin/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	token, err := h.svc.Login(req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(service.CookieName, token, int(h.svc.SessionTTL().Seconds()), "/", "", false, true)
	httpkit.OK(c, transport.OKResponse{OK: true})
}

// Logout clears the session cookie.
// POST /admin/logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(service.CookieName, "", -1, "/", "", false, true)
	httpkit.OK(c, transport.OKResponse{OK: true})
}

// AuthRequired guards admin routes: a valid session cookie or nothing.
func AuthRequired(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(service.CookieName)
		if err != nil || svc.VerifyToken(token) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}
