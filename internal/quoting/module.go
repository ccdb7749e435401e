// Package quoting provides the quote document builder and artifact downloads.
package quoting

import (
	apphttp "bakery_quote_backend/internal/http"
	"bakery_quote_backend/internal/quoting/handler"
	"bakery_quote_backend/internal/quoting/service"
	"bakery_quote_backend/platform/config"
	"bakery_quote_backend/platform/logger"
)

// Module is the quoting module implementing http.Module.
type Module struct {
	builder *service.Builder
	handler *handler.Handler
}

// NewModule creates and initializes the quoting module. converter and
// archiver may be nil when PDF rendering or archival is not configured.
func NewModule(defaults config.QuoteDefaultsConfig, converter service.HTMLConverter, archiver service.ArtifactArchiver, log *logger.Logger) *Module {
	builder := service.NewBuilder(defaults, converter, archiver, log)
	h := handler.New(defaults.GetOutputDir())
	return &Module{builder: builder, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "quoting"
}

// Builder returns the document builder; the confirmation gate commits
// through it.
func (m *Module) Builder() *service.Builder {
	return m.builder
}

// RegisterRoutes mounts the artifact download endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.GET("/download/:filename", m.handler.Download)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
