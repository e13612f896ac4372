// routes.go - Route and middleware registration
package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/ironsheep/ocr-gateway/internal/audit"
	"github.com/ironsheep/ocr-gateway/internal/config"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Extractor     Extractor
	Stats         CacheStatter
	Audit         audit.Recorder
	Version       string
	EngineName    string
	EngineVersion string
}

// Handlers holds all handler instances
type Handlers struct {
	System SystemHandler
	OCR    OCRHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies, cfg *config.Config) *Handlers {
	limits := LimitsDoc{
		MaxFileSize:      cfg.Validation.MaxFileSize,
		AllowedMIMETypes: cfg.Validation.AllowedMIMETypes,
		BatchMaxItems:    cfg.Batch.MaxItems,
	}
	if cfg.RateLimit.Enabled {
		limits.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
	}

	return &Handlers{
		System: NewSystemHandler(deps.Version, deps.EngineName, deps.EngineVersion, deps.Stats, NewDocs(deps.Version, limits)),
		OCR:    NewOCRHandler(deps.Extractor, deps.Audit),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, cfg *config.Config) {
	e.GET("/", handlers.System.HandleRoot)
	e.GET("/docs", handlers.System.HandleDocs)
	e.GET("/health", handlers.System.HandleHealth)

	var ocrMiddleware []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		ocrMiddleware = append(ocrMiddleware, RateLimiter(cfg.RateLimit))
	}

	e.POST("/extract-text", handlers.OCR.HandleExtractText, ocrMiddleware...)
	e.POST("/batch-extract", handlers.OCR.HandleBatchExtract, ocrMiddleware...)
}

// RateLimiter limits each client address to RequestsPerMinute requests with
// an equal burst, shared across the routes it is attached to.
func RateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		Burst:     cfg.RequestsPerMinute,
		ExpiresIn: cfg.ExpiresIn,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return &APIError{Status: http.StatusForbidden, Message: "unable to identify client", Cause: err}
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return NewRateLimitError(cfg.RequestsPerMinute)
		},
	})
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
	}))

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Server.RequestLogging {
				return true
			}
			return c.Request().URL.Path == "/health"
		},
		Format: `${time_rfc3339} ${id} ${remote_ip} ${method} ${uri} ${status} ${latency_human}` + "\n",
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	if cfg.Server.EnableCORS {
		origins := make([]string, 0, len(cfg.Server.AllowOrigins))
		for _, o := range cfg.Server.AllowOrigins {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
