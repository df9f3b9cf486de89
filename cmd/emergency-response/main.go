package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akagup/go-emergency-response/internal/api"
	"github.com/akagup/go-emergency-response/internal/classify"
	"github.com/akagup/go-emergency-response/internal/clients/huggingface"
	"github.com/akagup/go-emergency-response/internal/clients/localasr"
	"github.com/akagup/go-emergency-response/internal/clients/opencage"
	"github.com/akagup/go-emergency-response/internal/clients/twilio"
	"github.com/akagup/go-emergency-response/internal/config"
	"github.com/akagup/go-emergency-response/internal/extract"
	"github.com/akagup/go-emergency-response/internal/logging"
	"github.com/akagup/go-emergency-response/internal/notify"
	"github.com/akagup/go-emergency-response/internal/observability"
	"github.com/akagup/go-emergency-response/internal/pipeline"
	"github.com/akagup/go-emergency-response/internal/repository"
	"github.com/akagup/go-emergency-response/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	lexicon, err := config.LoadLexicon(cfg.Extraction.LexiconPath)
	if err != nil {
		logging.Fatalf("Failed to load lexicon: %v", err)
	}

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	hf := huggingface.NewClient(cfg.HuggingFace)

	transcribers := []pipeline.Transcriber{hf}
	if cfg.LocalASR.Enabled {
		transcribers = append(transcribers, localasr.NewClient(cfg.LocalASR))
	}
	normalizer := pipeline.NewNormalizer(
		pipeline.ChainTranscribers(transcribers...),
		hf,
		cfg.Pipeline.CallTimeout,
	)

	classifier := classify.New(hf, lexicon.Taxonomy)
	extractor, err := extract.New(lexicon)
	if err != nil {
		logging.Fatalf("Failed to build extractor: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	broadcaster := stream.NewBroadcaster()
	dispatcher := notify.NewDispatcher(twilio.NewClient(cfg.Twilio))
	geocoder := opencage.NewClient(cfg.Geocoder)

	intake := pipeline.NewIntake(pipeline.IntakeDeps{
		Normalizer:       normalizer,
		Classifier:       classifier,
		Extractor:        extractor,
		Summarizer:       hf,
		Store:            db,
		Broadcaster:      broadcaster,
		Dispatcher:       dispatcher,
		AuthorityContact: cfg.Twilio.AuthorityContact,
		Metrics:          metrics,
		CallTimeout:      cfg.Pipeline.CallTimeout,
	})

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(5)) // 5 req/s global limit

	handler := api.NewHandler(db, intake, geocoder, broadcaster, metrics)
	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
