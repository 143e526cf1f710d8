package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lumapix/gallery/internal/api"
	"github.com/lumapix/gallery/internal/config"
	"github.com/lumapix/gallery/internal/gallery"
	"github.com/lumapix/gallery/internal/storage"
	"github.com/lumapix/gallery/internal/vision"
	"github.com/lumapix/gallery/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize object store client
	store, err := storage.NewMinioClient(storage.BucketConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object store client")
	}

	// Initialize inference client; a missing credential is tolerated and the
	// metadata pipeline degrades to its documented error pair.
	var captioner vision.Captioner
	if cfg.GenAI.APIKey != "" {
		gemini, err := vision.NewGeminiCaptioner(context.Background(), cfg.GenAI.APIKey, cfg.GenAI.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize inference client")
		}
		captioner = gemini
	} else {
		log.Warn().Msg("GOOGLE_API_KEY is not set, metadata generation is disabled")
	}

	// Initialize services
	galleryService := gallery.NewService(store, captioner)

	// Initialize HTTP server
	router := api.NewRouter(galleryService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
