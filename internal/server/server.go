package server

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse/apiserver/config"
	"github.com/gatehouse/apiserver/internal/db"
	"github.com/gatehouse/apiserver/internal/events"
	"github.com/gatehouse/apiserver/internal/handlers"
	"github.com/gatehouse/apiserver/internal/mq"
	"github.com/gatehouse/apiserver/internal/password"
	"github.com/gatehouse/apiserver/internal/services"
	"github.com/gatehouse/apiserver/internal/store"
	"github.com/gatehouse/apiserver/internal/token"
	"github.com/gatehouse/apiserver/web"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     mq.Backend
}

// New constructs a Server with basic middleware and defaults. It fails when
// the configuration is invalid; a missing signing secret never makes it past
// this point.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	broker, err := mq.NewBackend(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	codec := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	publisher := events.NewPublisher(broker, logger)
	authService := services.NewAuthService(userRepo, hasher, codec, publisher, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, logger, cfg.IsDev())
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		_ = dbConn.Close()
		if broker != nil {
			_ = broker.Close()
		}
		return nil, err
	}
	router.Handle("/*", http.FileServer(http.FS(staticFS)))

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return s.httpServer.Close()
}
