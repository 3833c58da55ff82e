package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/api/handlers"
	appMiddleware "github.com/Pavankumar06T/justice-legal-chatbot/internal/api/middlewares"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/config"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/ingestion_engine"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *zap.SugaredLogger
}

// NewServer builds and wires all routes.
func NewServer(
	cfg *config.Config,
	auth *services.AuthService,
	chat *services.ChatService,
	db core.DbClient,
	obj core.ObjectClient,
	ing ingestion_engine.Ingestor,
	log *zap.SugaredLogger,
) *Server {
	authHandler := handlers.NewAuthHandler(auth)
	chatHandler := handlers.NewChatHandler(chat)
	corpusHandler := handlers.NewCorpusHandler(db, obj, ing, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Justice Department AI Chatbot Backend","status":"running"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	// API routes
	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/register", authHandler.Register)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(auth))
			protected.Post("/chat", chatHandler.Chat)
			protected.Get("/sessions", chatHandler.ListSessions)
			protected.Get("/sessions/{session_id}/history", chatHandler.GetSessionHistory)
			protected.Delete("/sessions/{session_id}", chatHandler.DeleteSession)
			protected.Post("/corpus/upload", corpusHandler.UploadDocument)
			protected.Get("/corpus", corpusHandler.ListDocuments)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Infow("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
