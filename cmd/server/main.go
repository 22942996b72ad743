package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/voicenoteslab/voicenotes-be/internal/api/handler"
	"github.com/voicenoteslab/voicenotes-be/internal/api/router"
	"github.com/voicenoteslab/voicenotes-be/internal/config"
	"github.com/voicenoteslab/voicenotes-be/internal/jobs"
	"github.com/voicenoteslab/voicenotes-be/internal/pipeline"
	"github.com/voicenoteslab/voicenotes-be/shared/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("SERVER_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableSource: cfg.Logging.EnableCaller,
	})

	appLogger.Info("Starting server",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// External pipeline stages
	transcriber := pipeline.NewWhisperTranscriber(pipeline.WhisperOptions{
		APIKey: cfg.Providers.OpenAIAPIKey,
		Logger: appLogger,
	})
	analyzer := pipeline.NewGeminiAnalyzer(pipeline.GeminiOptions{
		APIKey: cfg.Providers.GoogleAPIKey,
		Logger: appLogger,
	})
	if !transcriber.Configured() {
		appLogger.Warn("OPENAI_API_KEY not set, transcription will fail")
	}
	if !analyzer.Configured() {
		appLogger.Warn("GOOGLE_API_KEY not set, analysis will fail")
	}

	// Job subsystem: store, cache, executor, façade, reaper. All state is
	// memory-resident and lost on restart.
	jobStore := jobs.NewStore(cfg.Jobs.JobRetention.Std(), appLogger)
	resultCache := jobs.NewResultCache(cfg.Jobs.ResultTTL.Std(), appLogger)
	executor := jobs.NewExecutor(jobStore, resultCache, transcriber, analyzer, appLogger)
	service := jobs.NewService(jobStore, resultCache, executor, appLogger)
	reaper := jobs.NewReaper(jobStore, resultCache, cfg.Jobs.ReapInterval.Std(), appLogger)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go reaper.Run(reaperCtx)

	// Initialize router
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(&handler.Dependencies{
		Logger:         appLogger,
		Service:        service,
		Uploads:        cfg.Uploads,
		ProvidersReady: transcriber.Configured() && analyzer.Configured(),
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	appLogger.Info("Server is running", slog.String("address", addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	stopReaper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}
