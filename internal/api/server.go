package api

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ironsheep/ocr-gateway/internal/config"
)

// Server is the HTTP front end of the gateway.
type Server struct {
	echo *echo.Echo
	cfg  *config.Config
}

// NewServer wires middleware and routes onto a new Echo instance.
func NewServer(cfg *config.Config, deps *Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = ipExtractor(cfg.Server.TrustedProxies)

	SetupMiddleware(e, cfg)
	RegisterRoutes(e, NewHandlers(deps, cfg), cfg)

	return &Server{echo: e, cfg: cfg}
}

// ipExtractor identifies clients by socket peer. X-Forwarded-For is only
// followed through peers inside the trusted CIDR ranges.
func ipExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			log.Printf("ignoring trusted proxy %q: %v", cidr, err)
			continue
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within server.shutdown_timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Listen,
		Handler:      s.echo,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("ocr-gateway listening on %s", s.cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Printf("shutting down (timeout %s)", timeout)
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
