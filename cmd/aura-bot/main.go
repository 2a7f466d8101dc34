package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dizzymate/aura-bot/internal/bot"
	"github.com/dizzymate/aura-bot/internal/config"
	"github.com/dizzymate/aura-bot/internal/domain"
	httpapi "github.com/dizzymate/aura-bot/internal/http"
	"github.com/dizzymate/aura-bot/internal/observability"
	"github.com/dizzymate/aura-bot/internal/repo"
	"github.com/dizzymate/aura-bot/internal/services"
	"github.com/dizzymate/aura-bot/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// usageRepoShim adapts the repository free functions to the
// services.UsageRepo interface expected by the rate limiter.
type usageRepoShim struct{}

func (usageRepoShim) GetUsage(ctx context.Context, db *gorm.DB, userID, chatID int64, command, day string) (*domain.UsageRecord, error) {
	return repo.GetUsage(ctx, db, userID, chatID, command, day)
}

func (usageRepoShim) MarkUsage(ctx context.Context, db *gorm.DB, userID, chatID int64, command, day string, now time.Time) error {
	return repo.MarkUsage(ctx, db, userID, chatID, command, day, now)
}

// membershipRepoShim adapts the repository free functions to the
// services.MembershipRepo interface expected by the pool provider.
type membershipRepoShim struct{}

func (membershipRepoShim) ActiveMembers(ctx context.Context, db *gorm.DB, chatID int64, since time.Time) ([]domain.User, error) {
	return repo.ActiveMembers(ctx, db, chatID, since)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if cfg.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Str("path", cfg.DBPath).Msg("database ready")

	dayLoc, err := time.LoadLocation(cfg.DayTZ)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DAY_TZ")
	}
	night, err := services.NewNightWindow(cfg.NightTZ, cfg.NightStartHour, cfg.NightEndHour)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid NIGHT_TZ")
	}

	engine := &services.SelectionService{
		DB:               db,
		Limiter:          services.NewRateLimiter(db, usageRepoShim{}, cfg.HourlyCooldown, dayLoc),
		Pool:             services.NewPoolProvider(db, membershipRepoShim{}, cfg.ActivityWindow),
		Night:            night,
		Registry:         services.NewRegistry(cfg.Points),
		LeaderboardLimit: cfg.LeaderboardLimit,
	}
	roster := &services.RosterService{DB: db}

	janitor := &services.Janitor{
		DB:                 db,
		Interval:           cfg.SweepInterval,
		UsageRetention:     cfg.UsageRetention,
		SelectionRetention: cfg.SelectionRetention,
		Log:                log.With().Str("component", "janitor").Logger(),
	}
	go janitor.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(db),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	tg, err := bot.New(cfg, engine, roster, log.With().Str("component", "bot").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize bot")
	}
	go func() {
		log.Info().Msg("bot started")
		if err := tg.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("bot stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
}
