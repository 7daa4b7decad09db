package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dining/internal/config"
	"dining/internal/handler"
	"dining/internal/logging"
	"dining/internal/metrics"
	"dining/internal/middleware"
	"dining/internal/repository"
	"dining/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Campus Dining Recommender")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize menu store
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate store: %w", err)
		}
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to menu store")

	// Initialize generative client
	aiClient := service.NewOpenAIClient(&cfg.OpenAI, m, logger)
	if cfg.OpenAI.Enabled {
		logger.Info().
			Str("api_base", cfg.OpenAI.APIBase).
			Str("chat_model", cfg.OpenAI.ChatModel).
			Float64("temperature", cfg.OpenAI.ChatTemperature).
			Int("max_tokens", cfg.OpenAI.ChatMaxTokens).
			Msg("generative client initialized")
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set, meal picks will use the rule-based fallback")
	}

	// Initialize services
	calendar := service.NewCalendar(time.Now, cfg.Location(), cfg.Scoring.LookaheadDays)
	diningClient := service.NewCornellDiningClient(cfg.Ingestion.APIURL, cfg.Ingestion.Timeout, m, logger)
	ingestor := service.NewIngestor(diningClient, store, calendar, service.IngestOptions{
		Freshness:     cfg.Ingestion.Freshness,
		RetentionDays: cfg.Ingestion.RetentionDays,
	}, m, logger)
	scorer := service.NewScorer(service.ScoreWeights{
		FavoriteBonus:      cfg.Scoring.FavoriteBonus,
		LocationMatch:      cfg.Scoring.LocationMatch,
		LocationTableMatch: cfg.Scoring.LocationTableMatch,
		LocationDefault:    cfg.Scoring.LocationDefault,
		CuisineMatch:       cfg.Scoring.CuisineMatch,
		TopItems:           cfg.Scoring.TopItems,
	})
	recommendations := service.NewRecommendationService(store, store, scorer, calendar, m, logger)
	advisor := service.NewAdvisor(store, store, aiClient, calendar, service.AdvisorOptions{
		PromptItems:  cfg.Scoring.AdvisorPromptItems,
		MessageLimit: cfg.Scoring.AdvisorMessageLimit,
	}, m, logger)
	preferences := service.NewPreferenceService(store)
	scheduler := service.NewScheduler(ingestor, cfg.Ingestion.Interval, logger)

	logger.Info().Msg("services initialized")

	// Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.PrometheusMetrics(m))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "campus-dining-recommender",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
			"scheduler":  scheduler.Status(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	handler.RegisterRoutes(router, handler.Handlers{
		Classify:       handler.NewClassifyHandler(service.NewClassifier()),
		Menu:           handler.NewMenuHandler(ingestor, calendar),
		Preference:     handler.NewPreferenceHandler(preferences),
		Recommendation: handler.NewRecommendationHandler(recommendations, advisor),
	}, auth.AuthRequired())

	schedulerDone := scheduler.Start(ctx)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	logger.Info().Msg("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	<-schedulerDone

	logger.Info().Msg("server stopped")
	return nil
}

// openStore selects the backend named by DB_DRIVER
func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return repository.NewSQLiteRepository(cfg.Database.SQLitePath)
	default:
		return repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.Database.MaxConnections,
			cfg.Database.MaxIdleConnections,
		)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
