package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/auth"
	"github.com/BuzzLyutic/activity-dashboard/internal/clock"
	"github.com/BuzzLyutic/activity-dashboard/internal/config"
	"github.com/BuzzLyutic/activity-dashboard/internal/handler"
	"github.com/BuzzLyutic/activity-dashboard/internal/metrics"
	"github.com/BuzzLyutic/activity-dashboard/internal/middleware"
	"github.com/BuzzLyutic/activity-dashboard/internal/repo"
	"github.com/BuzzLyutic/activity-dashboard/internal/service"
	"github.com/BuzzLyutic/activity-dashboard/internal/session"
	"github.com/BuzzLyutic/activity-dashboard/internal/storage"
	"github.com/BuzzLyutic/activity-dashboard/internal/view"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем логгер
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Подключаем хранилище (memory, sqlite или postgres)
	store, closer, err := openStorage(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closer.Close() // Закрываем соединение при выходе

	// Метрики в собственном реестре
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	authenticator, err := auth.NewAuthenticator(auth.DemoAccounts)
	if err != nil {
		logger.Fatal("Failed to prepare demo accounts", zap.Error(err))
	}
	renderer, err := view.NewRenderer(time.Local)
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	clk := clock.Real{}
	guard := session.NewGuard(store, logger)
	h := handler.New(handler.Deps{
		Records:      service.NewRecordService(repo.NewRecordRepo(store, logger), clk, logger, collector),
		Themes:       service.NewThemeService(store),
		Login:        auth.NewLoginService(store, authenticator, clk, cfg.LoginDelay, logger, collector),
		Guard:        guard,
		Renderer:     renderer,
		Clock:        clk,
		LoadingDelay: cfg.LoadingDelay,
		Logger:       logger,
	})

	r := handler.NewRouter(h, handler.RouterConfig{
		Guard:   guard,
		Limiter: middleware.NewLoginLimiter(cfg.LoginRatePerMin, logger),
		Metrics: metrics.Handler(reg),
		Logger:  logger,
	})

	srv := http.Server{ // Создаем сервер
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

// openStorage returns the configured backend and a closer for its resources.
func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Storage, io.Closer, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on exit")
		return storage.NewMemory(), closeFunc(func() error { return nil }), nil

	case config.DriverPostgres:
		if err := storage.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("Successfully connected to the Database!")
		return storage.NewPostgres(pool), closeFunc(func() error { pool.Close(); return nil }), nil

	default:
		s, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using sqlite storage", zap.String("path", cfg.SQLitePath))
		return s, s, nil
	}
}
