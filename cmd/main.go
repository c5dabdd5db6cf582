package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/quotelink/referral-api/internal/agent"
	"github.com/quotelink/referral-api/internal/auth"
	"github.com/quotelink/referral-api/internal/click"
	"github.com/quotelink/referral-api/internal/config"
	"github.com/quotelink/referral-api/internal/middleware"
	"github.com/quotelink/referral-api/internal/notification"
	"github.com/quotelink/referral-api/internal/quote"
	"github.com/quotelink/referral-api/internal/session"
	"github.com/quotelink/referral-api/internal/settlement"
	"github.com/quotelink/referral-api/internal/utils/db"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuração inválida", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.GetDB(ctx)
	if err != nil {
		slog.Error("erro ao conectar no banco", "err", err)
		os.Exit(1)
	}

	// AutoMigrate para todos os modelos
	if err := db.Migrate(database,
		&agent.Agent{},
		&click.Click{},
		&session.Session{},
		&quote.QuoteRequest{},
		&settlement.SettlementRecord{},
	); err != nil {
		slog.Error("erro no AutoMigrate", "err", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		slog.Error("auth", "err", err)
		os.Exit(1)
	}
	if cfg.AdminPasswordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH não definida; login do painel desabilitado")
	}

	notifier, closeNotifier := buildNotifier(cfg)
	defer closeNotifier()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.TrustProxyHeaders = cfg.TrustProxyHeaders
	go limiter.Run(ctx.Done(), time.Minute)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(cfg, database, tokens, notifier, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("servidor rodando", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("servidor parou", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("erro no shutdown", "err", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	slog.Info("servidor encerrado")
}

// buildNotifier monta os canais configurados; sem nenhum, usa Noop.
func buildNotifier(cfg *config.Config) (notification.Notifier, func()) {
	var (
		sinks   notification.Multi
		closers []func() error
	)
	if cfg.NotifyWebhookURL != "" {
		sinks = append(sinks, notification.NewWebhook(cfg.NotifyWebhookURL))
	}
	if cfg.RedisAddr != "" {
		r := notification.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisChannel)
		sinks = append(sinks, r)
		closers = append(closers, r.Close)
	}
	if len(cfg.KafkaBrokers) > 0 {
		k := notification.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, k)
		closers = append(closers, k.Close)
	}
	if len(sinks) == 0 {
		return notification.Noop{}, func() {}
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	slog.Info("notificações habilitadas", "sinks", names)

	return sinks, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Warn("erro ao fechar canal de notificação", "err", err)
			}
		}
	}
}
