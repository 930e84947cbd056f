package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bloghub/apiserver/config"
	"github.com/bloghub/apiserver/internal/auth"
	"github.com/bloghub/apiserver/internal/db"
	"github.com/bloghub/apiserver/internal/handlers"
	"github.com/bloghub/apiserver/internal/mq"
	"github.com/bloghub/apiserver/internal/services"
	"github.com/bloghub/apiserver/internal/storage"
	"github.com/bloghub/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Server wraps the HTTP server and its long-lived dependencies.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	log        *logrus.Logger
}

// New constructs a Server with all components wired from config.
func New(ctx context.Context, cfg config.Config, log *logrus.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	imageStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := imageStorage.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := newBroker(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)

	events := services.NewEventPublisher(broker, log)
	userService := services.NewUserService(userRepo, events)
	postService := services.NewPostService(postRepo, events, cfg.PublicBaseURL)
	commentService := services.NewCommentService(commentRepo, events)
	mediaService := services.NewMediaService(imageStorage)

	tokens := auth.NewTokenService(cfg.JWTSecret)
	authMiddleware := handlers.RequireAuth(tokens)
	uploadHandler := handlers.NewUploadHandler(mediaService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{cfg.FrontendOrigin},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, tokens)
	})
	router.Route("/api/user", func(r chi.Router) {
		handlers.UserRouter(r, userService, authMiddleware)
	})
	router.Route("/api/posts", func(r chi.Router) {
		handlers.PostRouter(r, postService, authMiddleware)
	})
	router.Route("/api/comments", func(r chi.Router) {
		handlers.CommentRouter(r, commentService, authMiddleware)
	})
	router.With(authMiddleware).Post("/api/upload", uploadHandler.UploadImage)
	router.Get("/images/{filename}", uploadHandler.ServeImage)

	port := cfg.ServerPort
	if port == 0 {
		port = 8000
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
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	if s.log != nil {
		s.log.WithField("addr", s.httpServer.Addr).Info("starting server")
	}
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

func newStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case config.StorageBackendGCS:
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	case config.StorageBackendMinio, "":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newBroker returns nil when events are disabled; the event publisher
// treats a nil broker as a no-op.
func newBroker(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case config.MQBackendDisabled, "":
		return nil, nil
	case config.MQBackendRabbitMQ:
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	case config.MQBackendPubSub:
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}
