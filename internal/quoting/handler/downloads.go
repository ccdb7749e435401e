// Package handler serves generated quote artifacts.
package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"bakery_quote_backend/platform/httpkit"
)

// Handler serves quote artifact downloads from the output directory.
type Handler struct {
	outputDir string
}

// New creates a downloads handler rooted at outputDir.
func New(outputDir string) *Handler {
	return &Handler{outputDir: outputDir}
}

// Download serves one generated artifact by file name.
// GET /download/:filename
func (h *Handler) Download(c *gin.Context) {
	name := c.Param("filename")
	// Only bare file names generated by the builder are servable.
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		httpkit.Error(c, http.StatusBadRequest, "invalid filename", nil)
		return
	}
	if !strings.HasPrefix(name, "quote_") {
		httpkit.Error(c, http.StatusNotFound, "file not found", nil)
		return
	}

	path := filepath.Join(h.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		httpkit.Error(c, http.StatusNotFound, "file not found", nil)
		return
	}

	c.FileAttachment(path, name)
}
