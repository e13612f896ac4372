// handlers_system.go - Status, docs and health handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ironsheep/ocr-gateway/internal/cache"
)

// CacheStatter reports result cache counters.
type CacheStatter interface {
	CacheStats() cache.Stats
}

// SystemHandlerImpl implements the SystemHandler interface
type SystemHandlerImpl struct {
	version       string
	engine        string
	engineVersion string
	stats         CacheStatter
	docs          Docs
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(version, engine, engineVersion string, stats CacheStatter, docs Docs) SystemHandler {
	return &SystemHandlerImpl{
		version:       version,
		engine:        engine,
		engineVersion: engineVersion,
		stats:         stats,
		docs:          docs,
	}
}

// HandleRoot reports that the service is up and where its docs live.
func (h *SystemHandlerImpl) HandleRoot(c echo.Context) error {
	return respond(c, http.StatusOK, map[string]string{
		"status":   "online",
		"docs_url": "/docs",
	})
}

// HandleDocs returns the endpoint catalogue.
func (h *SystemHandlerImpl) HandleDocs(c echo.Context) error {
	return respond(c, http.StatusOK, h.docs)
}

// HandleHealth returns server health status
func (h *SystemHandlerImpl) HandleHealth(c echo.Context) error {
	return respond(c, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"engine":         h.engine,
		"engine_version": h.engineVersion,
		"cache":          h.stats.CacheStats(),
	})
}

// Docs describes the HTTP API.
type Docs struct {
	Title       string        `json:"title"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	Endpoints   []EndpointDoc `json:"endpoints"`
	Limits      LimitsDoc     `json:"limits"`
}

// EndpointDoc describes one route.
type EndpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Summary     string `json:"summary"`
	FormField   string `json:"form_field,omitempty"`
	RateLimited bool   `json:"rate_limited"`
}

// LimitsDoc lists the limits enforced by the OCR endpoints.
type LimitsDoc struct {
	MaxFileSize       int64    `json:"max_file_size"`
	AllowedMIMETypes  []string `json:"allowed_mime_types"`
	BatchMaxItems     int      `json:"batch_max_items"`
	RequestsPerMinute int      `json:"requests_per_minute,omitempty"`
}

// NewDocs builds the endpoint catalogue for the given limits.
func NewDocs(version string, limits LimitsDoc) Docs {
	rateLimited := limits.RequestsPerMinute > 0
	return Docs{
		Title:       "OCR API",
		Version:     version,
		Description: "Extracts text from JPEG, PNG and GIF images with Tesseract. Identical uploads are served from an in-memory cache.",
		Endpoints: []EndpointDoc{
			{Method: http.MethodGet, Path: "/", Summary: "Service status"},
			{Method: http.MethodGet, Path: "/docs", Summary: "This catalogue"},
			{Method: http.MethodGet, Path: "/health", Summary: "Health, engine and cache statistics"},
			{Method: http.MethodPost, Path: "/extract-text", Summary: "Extract text from a single image", FormField: "image", RateLimited: rateLimited},
			{Method: http.MethodPost, Path: "/batch-extract", Summary: "Process multiple images in batch", FormField: "images", RateLimited: rateLimited},
		},
		Limits: limits,
	}
}
