package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/molchanovartem/fitness-bot/internal/audit"
	"github.com/molchanovartem/fitness-bot/internal/bot"
	"github.com/molchanovartem/fitness-bot/internal/config"
	"github.com/molchanovartem/fitness-bot/internal/events"
	"github.com/molchanovartem/fitness-bot/internal/history"
	"github.com/molchanovartem/fitness-bot/internal/kb"
	"github.com/molchanovartem/fitness-bot/internal/ledger"
	"github.com/molchanovartem/fitness-bot/internal/metrics"
	"github.com/molchanovartem/fitness-bot/internal/service"
	"github.com/molchanovartem/fitness-bot/internal/timeparse"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("FITNESS_BOT_CONFIG"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, err := timeparse.NewResolver(cfg.Club.TimeZone)
	if err != nil {
		logger.Fatal().Err(err).Str("zone", cfg.Club.TimeZone).Msg("load club time zone")
	}

	knowledge, err := kb.Load(cfg.Club.KnowledgePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Club.KnowledgePath).Msg("load knowledge document")
	}

	bookings := buildLedger(ctx, cfg, &logger)

	var rdb *redis.Client
	var hist history.Store
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		hist = history.NewRedisStore(rdb, cfg.History.MaxMessages, 30*24*time.Hour)
	} else {
		hist = history.NewMemoryStore(cfg.History.MaxMessages)
	}

	auditLog, err := audit.Open(cfg.Audit.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Audit.Path).Msg("open audit log")
	}
	defer auditLog.Close()

	bus := events.NewBus()
	svc := service.New(bookings, resolver, bus, auditLog, &logger)

	b, err := bot.New(cfg.Telegram.BotToken, svc, knowledge, hist, bus, cfg.Managers, resolver.Location(), &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot")
	}
	b.StartReminders(ctx, bookings)

	if cfg.Backup.Enabled {
		backup := ledger.NewBackupService(cfg.Ledger.Path, cfg.Backup.Path, cfg.BackupInterval(), cfg.Backup.RetentionDays, &logger)
		go backup.Start(ctx)
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, bookings, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Str("zone", cfg.Club.TimeZone).Msg("fitness bot started")
	b.Start(ctx)
}

// buildLedger prefers Google Sheets with the local Excel file as failover;
// without Sheets the Excel file is the primary store.
func buildLedger(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) ledger.Ledger {
	excel, err := ledger.NewExcelLedger(cfg.Ledger.Path, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Ledger.Path).Msg("open bookings file")
	}

	if !cfg.Sheets.Enabled {
		return excel
	}

	sheets, err := ledger.NewSheetsLedger(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, cfg.Sheets.CredentialsPath, logger)
	if err != nil {
		logger.Error().Err(err).Msg("sheets unavailable, using local bookings file")
		return excel
	}
	return ledger.NewFailoverLedger(sheets, excel, logger)
}

func startHealthServer(ctx context.Context, port int, bookings ledger.Ledger, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if _, err := bookings.List(ctxPing); err != nil {
			http.Error(w, "ledger not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
