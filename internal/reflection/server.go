// Package reflection implements the development-time introspection server:
// action discovery and invocation over HTTP, with buffered and streaming
// response modes. CORS is wide open on purpose; this server must stay inside
// a local development boundary.
package reflection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/reflectctl/internal/observability"
	"github.com/danmuck/reflectctl/internal/registry"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// VersionHeader identifies the reflection protocol version on action-related
// responses.
const VersionHeader = "x-genkit-version"

// DefaultVersion is the protocol version stamped when none is configured.
const DefaultVersion = "1.0.0"

var (
	ErrRegistryNil         = errors.New("reflection: registry is nil")
	ErrShutdownNil         = errors.New("reflection: shutdown broadcast is nil")
	ErrUnsupportedEncoding = errors.New("reflection: unsupported encoding")
)

// ServiceConfig configures one reflection server instance.
type ServiceConfig struct {
	Name       string
	ListenAddr string
	Version    string
	Encoding   string

	// LegacyStreamContentType selects application/json framing for streamed
	// responses instead of text/event-stream.
	LegacyStreamContentType bool

	// ActionsConfigPath points at the actions manifest; resolved by the
	// command-line loader, unused by the server itself.
	ActionsConfigPath string

	OnStartup  func(context.Context) error
	OnShutdown func(context.Context) error
}

// DefaultServiceConfig returns standalone runtime defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:       "reflectctl",
		ListenAddr: "127.0.0.1:3100",
		Version:    DefaultVersion,
		Encoding:   "utf-8",
	}
}

// Server owns the route layer for one registry. It holds no mutable state of
// its own; the registry is read-mostly and synchronized internally.
type Server struct {
	name              string
	version           string
	charset           string
	streamContentType string

	registry *registry.Registry
	shutdown *ShutdownBroadcast
	router   *gin.Engine
	appeared time.Time
}

// NewServer builds the router with recovery, request logging, metrics and
// open CORS middleware, and binds the reflection routes.
func NewServer(cfg ServiceConfig, reg *registry.Registry, shutdown *ShutdownBroadcast) (*Server, error) {
	if reg == nil {
		return nil, ErrRegistryNil
	}
	if shutdown == nil {
		return nil, ErrShutdownNil
	}
	charset, err := normalizeEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = DefaultVersion
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = DefaultServiceConfig().Name
	}

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(name))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		MaxAge:          12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		name:              name,
		version:           version,
		charset:           charset,
		streamContentType: streamContentType(cfg.LegacyStreamContentType, charset),
		registry:          reg,
		shutdown:          shutdown,
		router:            r,
		appeared:          time.Now(),
	}
	s.registerRoutes()
	return s, nil
}

// Router exposes the underlying engine for serving and tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func normalizeEncoding(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "utf-8", "utf8":
		return "utf-8", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, raw)
	}
}

func streamContentType(legacy bool, charset string) string {
	base := "text/event-stream"
	if legacy {
		base = "application/json"
	}
	return base + "; charset=" + charset
}
