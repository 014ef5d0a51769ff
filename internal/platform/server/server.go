// Package server assembles the router, middleware stack and huma API shared
// by the greeting, counter and hash services, and runs them with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	applog "github.com/janisto/huma-hashchain/internal/platform/logging"
	appmiddleware "github.com/janisto/huma-hashchain/internal/platform/middleware"
	"github.com/janisto/huma-hashchain/internal/platform/respond"
)

const (
	// DocsPath serves the interactive API reference on the admin listener.
	DocsPath = "/api-docs"
	// OpenAPIPath is the admin listener's OpenAPI prefix (.json and .yaml).
	OpenAPIPath = "/openapi"
	// SchemasPath serves individual JSON schemas on the admin listener.
	SchemasPath = "/schemas"

	defaultPort            = "8080"
	defaultShutdownTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds writing one response.
	DefaultWriteTimeout = 10 * time.Second
)

// Config describes one service process.
type Config struct {
	// Name is used as the OpenAPI title and the log serviceContext.
	Name    string
	Version string
	// Port is bound on all interfaces and serves only the service's own routes.
	// AdminPort, when set, serves health, OpenAPI and docs on a second listener.
	Port            string
	AdminPort       string
	ShutdownTimeout time.Duration
	WriteTimeout    time.Duration
}

// Server is a single service: a chi router with the shared middleware stack,
// a huma API mounted on it, and the http.Server that will run it. A second
// router carries the admin routes so every path on Port reaches the service.
type Server struct {
	cfg       Config
	router    *chi.Mux
	api       huma.API
	http      *http.Server
	admin     *chi.Mux
	adminAPI  huma.API
	adminHTTP *http.Server
}

// New builds a Server without binding a socket. Register operations on API()
// and AdminAPI() and either call Run or exercise the handlers directly in tests.
func New(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	respond.Install()

	router := newRouter(appmiddleware.Security())
	hcfg := huma.DefaultConfig(cfg.Name, cfg.Version)
	// No built-in routes: every GET path belongs to the service's catch-all.
	hcfg.OpenAPIPath = ""
	hcfg.DocsPath = ""
	hcfg.SchemasPath = ""
	// Without the schema link hook bodies stay exactly {"data": ...} / {"error": ...}.
	hcfg.CreateHooks = nil
	hapi := humachi.New(router, hcfg)
	hapi.OpenAPI().OnAddOperation = append(hapi.OpenAPI().OnAddOperation, addCBORContent)

	admin := newRouter(appmiddleware.Security(DocsPath))
	acfg := huma.DefaultConfig(cfg.Name, cfg.Version)
	// Both APIs describe one document, served from the admin listener.
	acfg.OpenAPI = hapi.OpenAPI()
	acfg.OpenAPIPath = OpenAPIPath
	acfg.DocsPath = DocsPath
	acfg.SchemasPath = SchemasPath
	acfg.CreateHooks = nil
	adminAPI := humachi.New(admin, acfg)

	return &Server{
		cfg:       cfg,
		router:    router,
		api:       hapi,
		http:      newHTTPServer(cfg.Port, router, cfg.WriteTimeout),
		admin:     admin,
		adminAPI:  adminAPI,
		adminHTTP: newHTTPServer(cfg.AdminPort, admin, cfg.WriteTimeout),
	}
}

func newRouter(security func(http.Handler) http.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	router.Use(
		security,
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		// GET-only services; anything larger than a header block is abuse.
		chimiddleware.RequestSize(1<<20),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)
	return router
}

func newHTTPServer(port string, handler http.Handler, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}

// addCBORContent advertises CBOR next to every JSON response in the OpenAPI document.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}

// API returns the huma API used to register the service's operations.
func (s *Server) API() huma.API { return s.api }

// AdminAPI returns the huma API served on the admin listener.
func (s *Server) AdminAPI() huma.API { return s.adminAPI }

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler { return s.router }

// AdminHandler returns the admin listener's root handler.
func (s *Server) AdminHandler() http.Handler { return s.admin }

// Addr returns the listen address, ":<port>".
func (s *Server) Addr() string { return s.http.Addr }

// Config returns the effective configuration.
func (s *Server) Config() Config { return s.cfg }

// Run listens on Addr, and on the admin port when configured, and serves
// until ctx is cancelled, then drains in-flight requests for up to
// ShutdownTimeout. A cancelled context is a clean exit and returns nil.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		applog.LogError(ctx, "listen failed", err, zap.String("addr", s.http.Addr))
		return err
	}
	if s.cfg.AdminPort == "" {
		return s.Serve(ctx, ln)
	}
	adminLn, err := net.Listen("tcp", s.adminHTTP.Addr)
	if err != nil {
		_ = ln.Close()
		applog.LogError(ctx, "admin listen failed", err, zap.String("addr", s.adminHTTP.Addr))
		return err
	}
	return s.ServeWithAdmin(ctx, ln, adminLn)
}

// Serve is Run on an existing listener, without the admin listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return s.serve(ctx, binding{"service", s.http, ln})
}

// ServeWithAdmin is Run on existing service and admin listeners.
func (s *Server) ServeWithAdmin(ctx context.Context, ln, adminLn net.Listener) error {
	return s.serve(ctx, binding{"service", s.http, ln}, binding{"admin", s.adminHTTP, adminLn})
}

type binding struct {
	role string
	srv  *http.Server
	ln   net.Listener
}

func (s *Server) serve(ctx context.Context, bindings ...binding) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range bindings {
		g.Go(func() error {
			applog.LogInfo(ctx, "server listening",
				zap.String("addr", b.ln.Addr().String()),
				zap.String("service", s.cfg.Name),
				zap.String("role", b.role),
			)
			if err := b.srv.Serve(b.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				applog.LogError(ctx, "serve failed", err, zap.String("role", b.role))
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			applog.LogInfo(context.Background(), "shutdown signal received")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, b := range bindings {
			if err := b.srv.Shutdown(shutdownCtx); err != nil {
				applog.LogError(shutdownCtx, "server shutdown error", err, zap.String("role", b.role))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}
