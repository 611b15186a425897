package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/analysis"
	"github.com/procon-engine/backend/internal/api/handlers"
	"github.com/procon-engine/backend/internal/cache/redis"
	"github.com/procon-engine/backend/internal/hf"
	"github.com/procon-engine/backend/internal/llm"
	"github.com/procon-engine/backend/internal/metrics"
	"github.com/procon-engine/backend/internal/middleware/ratelimit"
	"github.com/procon-engine/backend/internal/middleware/requestid"
	"github.com/procon-engine/backend/internal/middleware/security"
	"github.com/procon-engine/backend/internal/middleware/validation"
	"github.com/procon-engine/backend/internal/nlp/parse"
	"github.com/procon-engine/backend/internal/pipeline"
	"github.com/procon-engine/backend/internal/scraper"
	"github.com/procon-engine/backend/internal/storage/sqlite"
	"github.com/procon-engine/backend/internal/summary"
	"github.com/procon-engine/backend/pkg/config"
	appLogger "github.com/procon-engine/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting pro/con engine API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Records survive in SQLite either way, so a missing Redis only
	// costs lookup latency.
	var hotCache pipeline.HotCache
	redisClient, err := redis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		time.Duration(cfg.Redis.RecordTTLHr)*time.Hour,
	)
	if err != nil {
		appLogger.Warn("Redis unavailable, running without hot cache", zap.Error(err))
	} else {
		defer redisClient.Close()
		hotCache = redisClient
	}

	hfClient := hf.NewClient(hf.Config{
		APIToken:        cfg.HuggingFace.APIToken,
		BaseURL:         cfg.HuggingFace.BaseURL,
		SummarizerModel: cfg.HuggingFace.SummarizerModel,
		ExtremeSumModel: cfg.HuggingFace.ExtremeSumModel,
		SentimentModel:  cfg.HuggingFace.SentimentModel,
		ZeroShotModel:   cfg.HuggingFace.ZeroShotModel,
		MaxAttempts:     cfg.HuggingFace.MaxAttempts,
		Backoff:         time.Duration(cfg.HuggingFace.BackoffSec) * time.Second,
		Timeout:         time.Duration(cfg.HuggingFace.TimeoutSec) * time.Second,
	})
	if err := hfClient.PinModels(context.Background()); err != nil {
		appLogger.Warn("Failed to pin inference models", zap.Error(err))
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
	})

	productScraper := scraper.New(scraper.Config{
		ProxyURL:       cfg.Scraper.ProxyURL,
		ProxyAPIKey:    cfg.Scraper.ProxyAPIKey,
		BaseURL:        cfg.Scraper.BaseURL,
		NumReviewPages: cfg.Scraper.NumReviewPages,
		Timeout:        time.Duration(cfg.Scraper.TimeoutSec) * time.Second,
	})

	depParser := parse.NewHTTPParser(cfg.Scraper.ParserURL, 30*time.Second)
	summarizer := summary.New(hfClient, cfg.Pipeline.SummaryTokenLimit)
	engine := analysis.NewEngine(hfClient, hfClient)

	orchestrator := pipeline.New(
		sqliteClient,
		hotCache,
		productScraper,
		depParser,
		summarizer,
		llmClient,
		engine,
		pipeline.Config{
			MaxRestaurantReviews: cfg.Pipeline.MaxRestaurantReviews,
			ReviewsForProCon:     cfg.Pipeline.ReviewsForProCon,
		},
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestid.Middleware())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	rateLimiter := ratelimit.New(ratelimit.Config{
		Logger: appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()
	app.Use(rateLimiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	proConHandler := handlers.NewProConHandler(orchestrator, cfg.Server.ServiceKeys)

	api := app.Group("/api/v1")
	api.Post("/procon", proConHandler.HandleProduct)
	api.Post("/procon/restaurant", proConHandler.HandleRestaurant)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
