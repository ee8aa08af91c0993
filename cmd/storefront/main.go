// Package main запускает HTTP-сервер витрины цифровых товаров.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/storefront/internal/config"
	"github.com/mmeshcher/storefront/internal/handler"
	"github.com/mmeshcher/storefront/internal/logging"
	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/notify"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/repository"
	"github.com/mmeshcher/storefront/internal/service"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		Production: cfg.LogProduction,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		logger.Fatal("database initialization error", zap.Error(err))
	}

	payments := payment.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	if cfg.StripeSecretKey == "" {
		sugar.Warn("STRIPE_SECRET_KEY is not set, checkout is disabled")
	}
	if cfg.StripeWebhookSecret == "" {
		sugar.Warn("STRIPE_WEBHOOK_SECRET is not set, webhooks will be rejected")
	}

	var sender notify.Sender
	if cfg.SMTPEnabled() {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			To:       cfg.OwnerEmail,
			ToName:   cfg.OwnerName,
		})
	} else {
		sugar.Info("SMTP is not configured, owner notifications go to the log")
		sender = notify.NewLogSender(logger)
	}

	svc := service.NewService(repo, payments, notify.NewNotifier(sender, logger), logger, service.Options{
		Currency:      strings.ToLower(cfg.Currency),
		PublicBaseURL: cfg.PublicBaseURL,
		AdminPassword: cfg.AdminPassword,
		OwnerOpenID:   cfg.OwnerOpenID,
	})
	defer svc.Close()

	if cfg.OwnerOpenID != "" {
		if _, err := svc.SignIn(context.Background(), model.Identity{
			OpenID:      cfg.OwnerOpenID,
			Name:        cfg.OwnerName,
			Email:       cfg.OwnerEmail,
			LoginMethod: "owner",
		}); err != nil {
			logger.Warn("owner bootstrap failed", zap.Error(err))
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = middleware.NewRateLimiter(rdb, "checkout", cfg.CheckoutRateLimit, cfg.CheckoutRateWindow, logger)
	} else {
		sugar.Info("REDIS_ADDR is not set, checkout rate limiting is disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret, svc, strings.HasPrefix(cfg.PublicBaseURL, "https://"))
	h := handler.NewHandler(svc, logger, authMiddleware, limiter, repo)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("application terminated with error", zap.Error(err))
	}
}
