package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-pdv/internal/ai"
	"go-pdv/internal/auth"
	"go-pdv/internal/cache"
	"go-pdv/internal/checkout"
	"go-pdv/internal/config"
	"go-pdv/internal/database"
	"go-pdv/internal/handlers"
	"go-pdv/internal/sale"
	"go-pdv/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const uploadDir = "./uploads"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// --- Logging: readable in development, JSON in production ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN, !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to the database")
	}

	// --- Checkout sessions survive restarts when Redis is configured ---
	var sessions cache.SessionCache
	cacheKind := "memory"
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to redis")
		}
		defer rdb.Close()
		sessions = cache.NewRedisSessionCache(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)
		cacheKind = "redis"
	} else {
		sessions = cache.NewMemorySessionCache()
		log.Warn().Msg("REDIS_URL not set, checkout sessions are kept in memory")
	}

	engine := sale.NewEngine(
		sale.WithTolerance(cfg.Tolerance()),
		sale.WithGroupIdentical(cfg.GroupIdenticalItems),
	)
	terminal := utils.TerminalID()
	till := checkout.NewService(
		engine,
		database.NewProductRepository(db),
		database.NewCustomerRepository(db),
		database.NewSaleRepository(db),
		database.NewCashierRepository(db),
		sessions,
		checkout.Options{Terminal: terminal, FinalizeRetries: cfg.FinalizeRetries},
	)

	tokens, err := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid JWT configuration")
	}

	agent := ai.NewAgent(cfg.GeminiAPIKey, cfg.GeminiModel,
		database.NewProductRepository(db), database.NewReportRepository(db))
	if !agent.Enabled() {
		log.Warn().Msg("GEMINI_API_KEY not set, /api/ask is disabled")
	}

	// --- FEATURE FLAG: Company Registration ---
	if cfg.AllowRegistration {
		log.Warn().Msg("registration route is OPEN, disable it in production")
	} else {
		log.Info().Msg("registration route is disabled")
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("could not create uploads folder")
	}

	r := handlers.NewRouter(handlers.Deps{
		DB:                db,
		Till:              till,
		Tokens:            tokens,
		Agent:             agent,
		AllowRegistration: cfg.AllowRegistration,
		AllowedOrigins:    cfg.AllowedOrigins(),
		BaseURL:           cfg.BaseURL,
		UploadDir:         uploadDir,
		StoreName:         cfg.StoreName,
		Terminal:          terminal,
		CacheKind:         cacheKind,
	})
	r.Static("/uploads", uploadDir)

	// --- DEPLOYMENT: Serve React Frontend ---
	r.Static("/assets", "./web/assets")
	r.StaticFile("/vite.svg", "./web/vite.svg")

	// SPA Catch-All: a refresh on "/pdv" still gets index.html.
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	log.Info().Str("url", cfg.BaseURL).Str("terminal", terminal).Str("session_cache", cacheKind).Msg("server starting")
	if err := r.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
