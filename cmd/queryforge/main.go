package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"queryforge/internal/api"
	"queryforge/internal/config"
	"queryforge/internal/data"
	"queryforge/internal/execute"
	"queryforge/internal/logger"
	"queryforge/internal/nl2sql"
	"queryforge/internal/service"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\nCheck .env file or environment variables.\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	if err := logger.Init("logs"); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info.Println("Starting QueryForge...")

	// 3. Initialize metadata store
	db, err := data.InitDB(cfg.DBPath)
	if err != nil {
		logger.Error.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	// 4. Initialize Repos
	userRepo := data.NewUserRepo(db)
	connRepo := data.NewConnectionRepo(db)
	queryRepo := data.NewQueryRepo(db)
	feedbackRepo := data.NewFeedbackRepo(db)

	// 5. Initialize Services
	cryptoSvc, err := service.NewEncryptionService(cfg.EncryptionKey)
	if err != nil {
		logger.Error.Fatalf("Failed to init crypto service: %v", err)
	}

	translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
	})
	if err != nil {
		logger.Error.Fatalf("Failed to init translator: %v", err)
	}

	executor := execute.NewQueryExecutor(cfg.MaxResultRows)
	registry := service.NewConnectionRegistry(connRepo, cryptoSvc, executor, cfg.ProbeTimeout)
	orchestrator := service.NewQueryOrchestrator(connRepo, queryRepo, cryptoSvc, translator, executor, cfg.TranslateTimeout, cfg.ExecuteTimeout)
	feedbackBinder := service.NewFeedbackBinder(queryRepo, feedbackRepo)

	// 6. Initialize Handlers
	userHandler := api.NewUserHandler(userRepo)
	connHandler := api.NewConnectionHandler(registry)
	queryHandler := api.NewQueryHandler(orchestrator, feedbackBinder)

	// 7. Start Server
	r := chi.NewRouter()
	r.Use(api.LoggingMiddleware)

	// LLM-backed submissions get a tighter bucket than general API traffic.
	apiLimiter := api.NewRateLimiter(120, 20)
	submitLimiter := api.NewRateLimiter(20, 5)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"healthy"}`)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(api.IdentityMiddleware)
		r.Use(apiLimiter.MiddlewareByUser)

		r.Mount("/users", userHandler.Routes())
		r.Mount("/connections", connHandler.Routes())
		r.With(submitLimiter.MiddlewareByUser).Mount("/queries", queryHandler.Routes())
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	// Graceful shutdown channel
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info.Printf("Server listening on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error.Fatalf("Server startup failed: %v", err)
		}
	}()

	<-stop
	logger.Info.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error.Printf("Server shutdown error: %v", err)
	}
	logger.Info.Println("Server stopped")
}
