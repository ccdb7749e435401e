// Package admin provides the admin session module.
package admin

import (
	"github.com/gin-gonic/gin"

	"bakery_quote_backend/internal/admin/handler"
	"bakery_quote_backend/internal/admin/service"
	apphttp "bakery_quote_backend/internal/http"
	"bakery_quote_backend/platform/config"
	"bakery_quote_backend/platform/validator"
)

// Module is the admin module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the admin module.
func NewModule(cfg config.AdminConfig, val *validator.Validator) *Module {
	svc := service.New(cfg)
	h := handler.New(svc, val)
	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "admin"
}

// AuthMiddleware returns the cookie guard for the admin route group.
func (m *Module) AuthMiddleware() gin.HandlerFunc {
	return handler.AuthRequired(m.service)
}

// RegisterRoutes mounts the session endpoints. Login and logout sit outside
// the guarded group; everything else under /admin requires the cookie.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.POST("/admin/login", m.handler.Login)
	ctx.Engine.POST("/admin/logout", m.handler.Logout)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
