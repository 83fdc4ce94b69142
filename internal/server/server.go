package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/internal/config"
	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

const name = "neorecipe"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
)

// Service is the catalog surface served over HTTP. *neorecipe.Manager
// implements it.
type Service interface {
	Verify(ctx context.Context) error

	GetIngredient(ctx context.Context, id string) (*models.Ingredient, error)
	GetAllIngredients(ctx context.Context) ([]models.Ingredient, error)
	CreateIngredient(ctx context.Context, name string) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id, name string) (*models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id string) (bool, error)

	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	GetAllRecipes(ctx context.Context) ([]models.Recipe, error)
	GetRecipesByIngredients(ctx context.Context, ingredientIDs []string) ([]models.RankedRecipe, error)
	CreateRecipe(ctx context.Context, in models.RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, in models.RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) (bool, error)
	RecipeGraph(ctx context.Context, id string) (*models.GraphResult, error)

	AddIngredientToRecipe(ctx context.Context, recipeID string, element models.ElementInput) (*models.Element, error)
	UpdateIngredientInRecipe(ctx context.Context, element models.ElementInput) (*models.Element, error)
	RemoveIngredientFromRecipe(ctx context.Context, elementID string) (bool, error)
}

// Server is the HTTP front of a Service.
type Server struct {
	config      config.ServerConfig
	svc         Service
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	logger      *slog.Logger

	mu    sync.RWMutex
	ready bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server for svc listening on cfg.Address:cfg.Port.
func NewServer(cfg config.ServerConfig, svc Service, opts ...Option) *Server {
	s := &Server{
		config:      cfg,
		svc:         svc,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// System endpoints (no rate limiting)
	mux.HandleFunc("GET /{$}", s.handleDefault)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	for _, rt := range s.routes() {
		mux.HandleFunc(rt.pattern, s.withMiddleware(rt.handler))
	}
	return mux
}

// SetReady marks the server as ready to serve traffic
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.logger.Info("starting server",
		"name", name,
		"version", version,
		"commit", commit,
		"address", s.httpServer.Addr,
		"rateLimit", s.config.RateLimit,
		"rateLimitBurst", s.config.RateLimitBurst,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.SetReady(true)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}
