package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-scheduler/internal/db"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	infraRepo "github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/routes"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	grid, err := timegrid.NewGrid(cfg.SlotOpen, cfg.SlotClose, cfg.SlotStepMinutes)
	if err != nil {
		return fmt.Errorf("slot grid: %w", err)
	}
	if !timezone.IsValid(cfg.Timezone) {
		log.Warn("unknown timezone, falling back", zap.String("timezone", cfg.Timezone), zap.String("fallback", timezone.DefaultTimezone))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("salon")

	// ======================================================
	// STORE
	// ======================================================
	var (
		repo       domain.Repository
		auditStore audit.Store
		ping       func(context.Context) error
	)

	retry := infraRepo.DefaultRetryPolicy()
	retry.MaxElapsed = cfg.StoreRetryMaxElapsed

	switch cfg.StoreDriver {
	case "postgres":
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if cfg.SeedFile != "" {
			catalog, err := infraRepo.LoadCatalog(cfg.SeedFile)
			if err != nil {
				return err
			}
			if err := infraRepo.SeedGorm(ctx, db, catalog); err != nil {
				return err
			}
		}

		m.Register(collectors.NewDBStatsCollector(sqlDB, "salon"))
		repo = infraRepo.NewAppointmentGormRepository(db, retry, log)
		auditStore = audit.NewGormStore(db)
		ping = sqlDB.PingContext

	case "memory":
		mem := infraRepo.NewAppointmentMemoryRepository()
		if cfg.SeedFile != "" {
			catalog, err := infraRepo.LoadCatalog(cfg.SeedFile)
			if err != nil {
				return err
			}
			mem.Seed(catalog.Staff, catalog.Services)
		} else {
			log.Warn("memory store started without SEED_FILE: no staff, every slot has zero capacity")
		}
		repo = mem
		auditStore = audit.NewMemoryStore()
	}

	// ======================================================
	// CACHE
	// ======================================================
	var availabilityCache cache.AvailabilityCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, availability reads go to the store", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		availabilityCache = cache.NewRedisAvailability(rdb, cfg.CacheTTL)
	}

	dispatcher := audit.NewDispatcher(auditStore, log)

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	routes.RegisterRoutes(r, cfg, routes.Services{
		Scheduling: ucAppointment.Deps{
			Repo:    repo,
			Cache:   availabilityCache,
			Audit:   dispatcher,
			Metrics: m,
			Clock:   timezone.NewClock(cfg.Timezone),
			Grid:    grid,
			Log:     log,
		},
		AuditStore: auditStore,
		Metrics:    m,
		Log:        log,
		Ping:       ping,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server running",
			zap.String("addr", cfg.Addr()),
			zap.String("store", cfg.StoreDriver),
			zap.Strings("grid", []string{cfg.SlotOpen, cfg.SlotClose}),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error("audit drain", zap.Error(err))
	}
	return nil
}
