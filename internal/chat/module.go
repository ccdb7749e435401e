// Package chat provides the conversational quoting module.
package chat

import (
	"bakery_quote_backend/internal/chat/agent"
	"bakery_quote_backend/internal/chat/handler"
	"bakery_quote_backend/internal/chat/service"
	"bakery_quote_backend/internal/dates"
	apphttp "bakery_quote_backend/internal/http"
	"bakery_quote_backend/internal/pricing"
	"bakery_quote_backend/platform/logger"
)

// Deps are the collaborators the chat module is wired with. All side-effect
// collaborators are optional; the gate degrades to status strings and
// warnings when they are absent.
type Deps struct {
	Model      service.ChatModel
	Estimator  *pricing.Estimator
	Catalog    pricing.Catalog
	Resolver   *dates.Resolver
	Holiday    dates.HolidayValidator
	Builder    agent.QuoteBuilder
	Email      agent.EmailSender
	Sheets     agent.SheetAppender
	SenderName string
	FXRates    map[string]float64
}

// Module is the chat module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the chat module.
func NewModule(deps Deps, log *logger.Logger) *Module {
	gate := agent.NewGate(deps.Estimator, deps.Resolver, deps.Builder, deps.Email, deps.Sheets, deps.SenderName, log)
	dispatcher := agent.NewDispatcher(deps.Catalog, deps.Estimator, gate, log)
	svc := service.New(deps.Model, deps.Estimator, deps.Catalog, deps.Resolver, deps.Holiday, nil, dispatcher, deps.FXRates, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes mounts the conversational endpoint behind the rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/chat", ctx.ChatRateLimit, m.handler.Chat)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
