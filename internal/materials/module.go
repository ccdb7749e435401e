// Package materials provides the material price store module.
package materials

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "bakery_quote_backend/internal/http"
	"bakery_quote_backend/internal/materials/handler"
	"bakery_quote_backend/internal/materials/repository"
	"bakery_quote_backend/internal/materials/service"
	"bakery_quote_backend/platform/logger"
	"bakery_quote_backend/platform/validator"
)

// Module is the materials module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the materials module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "materials"
}

// Service returns the service layer; the estimator and the chat tools read
// prices through it.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the admin price endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/materials", m.handler.List)
	ctx.Admin.POST("/materials/update", m.handler.Update)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
