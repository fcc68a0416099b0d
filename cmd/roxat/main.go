package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"roxat-report/internal/config"
	"roxat-report/internal/service/dashboard"
	generate_excel "roxat-report/internal/service/generate-excel"
	"roxat-report/internal/service/session"
	"roxat-report/internal/storage/memory"
	"roxat-report/internal/storage/mysql"
	"roxat-report/internal/storage/redis"
	"roxat-report/internal/storage/remote"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env)

	// суммы уходят на фронт числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true

	loc, err := cfg.LoadLocation()
	if err != nil {
		log.Error("unknown dashboard location", slog.String("location", cfg.Dashboard.Location), slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orders, err := remote.New(cfg.API.BaseURL, cfg.API.OrderLimit, &http.Client{})
	if err != nil {
		log.Error("failed to create order api client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open session store", slog.String("driver", cfg.Session.Driver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	sessions := session.New(log, store, orders)
	dashboards := dashboard.NewService(log, orders, sessions, dashboard.Options{
		Branches:      cfg.Dashboard.Branches,
		DefaultBranch: cfg.Dashboard.DefaultBranch,
		Location:      loc,
		Debounce:      cfg.Dashboard.Debounce,
		IdleTTL:       cfg.Session.TTL,
	})
	// дашборд живет не дольше своей сессии
	sessions.OnGone(dashboards.Close)
	go dashboards.RunSweeper(ctx, sweepInterval(cfg.Session.TTL))
	genService := generate_excel.NewGenerateService(dashboards, loc)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, sessions, dashboards, genService),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("server started", slog.String("address", cfg.Address), slog.String("session_driver", cfg.Session.Driver))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed start server", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.SessionStore, func(), error) {
	switch cfg.Session.Driver {
	case config.DriverRedis:
		s, err := redis.New(ctx, cfg.Session.Redis.Addr, cfg.Session.Redis.Password, cfg.Session.Redis.DB, cfg.Session.TTL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.DriverMySQL:
		s, err := mysql.New(cfg.Session.MySQL.DSN, cfg.Session.TTL)
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.DriverMemory:
		return memory.New(cfg.Session.TTL), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

type dualHandler struct {
	coreHandler  slog.Handler
	errorHandler slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.coreHandler.Enabled(ctx, lvl) || h.errorHandler.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error

	// Всегда пишем в основной вывод (stdout)
	if h.coreHandler.Enabled(ctx, r.Level) {
		if err = h.coreHandler.Handle(ctx, r); err != nil {
			return err
		}
	}

	// Ошибки дублируем в файл; сбой записи в файл не мешает основному выводу
	if r.Level >= slog.LevelError && h.errorHandler.Enabled(ctx, r.Level) {
		_ = h.errorHandler.Handle(ctx, r.Clone())
	}

	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
	}
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var coreHandler slog.Handler
	switch env {
	case envDev:
		coreHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case envLocal, envProd:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	// Файловый handler: только ошибки
	errorFile, err := os.OpenFile("errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		slog.Warn("Cannot open error log file", "error", err)
		return slog.New(coreHandler)
	}

	errorHandler := slog.NewTextHandler(errorFile, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	return slog.New(&dualHandler{
		coreHandler:  coreHandler,
		errorHandler: errorHandler,
	})
}
