package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-arbitration/internal/bootstrap"
	"github.com/ignatzorin/freelance-arbitration/internal/config"
	"github.com/ignatzorin/freelance-arbitration/internal/db"
	"github.com/ignatzorin/freelance-arbitration/internal/events"
	httpHandlers "github.com/ignatzorin/freelance-arbitration/internal/http/handlers"
	"github.com/ignatzorin/freelance-arbitration/internal/http/middleware"
	httpRouter "github.com/ignatzorin/freelance-arbitration/internal/http/router"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
	"github.com/ignatzorin/freelance-arbitration/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}
	lg := logger.L()

	store, storePing, err := bootstrap.OpenStore(ctx, cfg, bootstrap.StoreOptions{Migrate: true})
	if err != nil {
		lg.WithError(err).Fatal("main: ошибка подключения к хранилищу")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			lg.WithError(err).Warn("main: ошибка закрытия хранилища")
		}
	}()

	checks := map[string]httpHandlers.HealthCheck{cfg.StoreDriver: httpHandlers.HealthCheck(storePing)}

	// Redis необязателен: без него события уходят только в WebSocket, а лимиты считаются в памяти.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			lg.WithError(err).Fatal("main: ошибка подключения к redis")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				lg.WithError(err).Warn("main: ошибка закрытия redis")
			}
		}()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	rateStore, err := middleware.NewRateLimitStore(rdb)
	if err != nil {
		lg.WithError(err).Fatal("main: ошибка подготовки rate limit")
	}

	evidence, err := bootstrap.NewEvidenceStorage(ctx, cfg)
	if err != nil {
		lg.WithError(err).Fatal("main: не удалось подготовить хранилище доказательств")
	}

	// Вебсокеты и доставка событий.
	hub := ws.NewHub(ctx)
	go hub.Run()

	publishers := events.Multi{hub}
	if rdb != nil {
		publishers = append(publishers, events.NewRedisPublisher(rdb, cfg.EventsChannel))
	}

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	mediationService := service.NewMediationService(store, store, publishers, service.MediationConfig{
		LeadTime:  cfg.MediationLeadTime,
		Mediators: cfg.Mediators,
	})
	disputeService := service.NewDisputeService(store, mediationService, publishers, cfg.DisputeDeadline)
	reviewService := service.NewReviewService(store, bootstrap.NewScorer(cfg), publishers, service.ReviewConfig{
		ScoringTimeout:       cfg.ScoringTimeout,
		AutoApproveThreshold: cfg.AutoApproveThreshold,
		AutoApproveDelay:     cfg.AutoApproveDelay,
	})
	defer reviewService.Close()
	analyticsService := service.NewAnalyticsService(store, store)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, tokenManager, rateStore,
		httpHandlers.NewHealthHandler(checks),
		httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		httpHandlers.NewDisputeHandler(disputeService, evidence),
		httpHandlers.NewReviewHandler(reviewService),
		httpHandlers.NewMediationHandler(mediationService, disputeService),
		httpHandlers.NewAnalyticsHandler(analyticsService),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	lg.WithFields(logrus.Fields{
		"port":     cfg.HTTPPort,
		"store":    cfg.StoreDriver,
		"evidence": cfg.EvidenceStorage,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.WithError(err).Error("main: сервер завершился с ошибкой")
	}
}
