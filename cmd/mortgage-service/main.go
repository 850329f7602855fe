// cmd/mortgage-service/main.go
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

	"go.uber.org/zap"

	"simple-mortgage/internal/common/camunda"
	"simple-mortgage/internal/common/config"
	"simple-mortgage/internal/common/database"
	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/common/observability"
	"simple-mortgage/internal/common/validation"
	"simple-mortgage/internal/mortgage"
	"simple-mortgage/internal/service"
	"simple-mortgage/internal/storage"
	httptransport "simple-mortgage/internal/transport/http"

	ca "simple-mortgage/internal/workers/applicant/create-applicant"
	lep "simple-mortgage/internal/workers/eligibility/list-eligible-products"
)

const lockPrefix = "simple-mortgage:applicant-lock:"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type stores struct {
	applicants storage.ApplicantStore
	products   storage.ProductStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting mortgage service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("camunda", cfg.Camunda.Enabled),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()
	readiness := map[string]httptransport.Pinger{}

	// --- Stores ---
	var st stores
	switch cfg.Database.Driver {
	case config.DriverMemory:
		st = stores{
			applicants: storage.NewMemoryApplicantStore(),
			products:   storage.NewMemoryProductStore(),
		}
		zapLog.Info("Using in-memory stores")

	default:
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		if err := storage.EnsureSchema(ctx, pg.GetDB()); err != nil {
			zapLog.Fatal("schema setup failed", zap.Error(err))
		}
		st = stores{
			applicants: storage.NewPostgresApplicantStore(pg.GetDB()),
			products:   storage.NewPostgresProductStore(pg.GetDB()),
		}
		readiness["postgres"] = pg
		zapLog.Info("PostgreSQL connected successfully")
	}

	if cfg.Seed.Enabled {
		if err := storage.Seed(ctx, st.applicants, st.products, log); err != nil {
			zapLog.Fatal("seeding failed", zap.Error(err))
		}
	}

	// --- Create lock: in-process unless Redis is configured ---
	var locker storage.Locker = storage.NewLocalLocker()
	if cfg.Database.Redis.Address != "" {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()

		locker = storage.NewRedisLocker(rc.GetClient(), lockPrefix, config.GetDuration(cfg.Database.Redis.LockTTL))
		readiness["redis"] = rc
		zapLog.Info("Redis connected successfully")
	}

	// --- Services ---
	tracer := obs.Tracer()
	evaluator := mortgage.NewEvaluator(mortgage.Policy{
		MaxLTV: cfg.Eligibility.MaxLTV,
		MinAge: cfg.Eligibility.MinAge,
	})
	applicantSvc := service.NewApplicantService(st.applicants, locker, tracer, log)
	productSvc := service.NewProductService(st.products, tracer, log)
	eligibilitySvc := service.NewEligibilityService(st.applicants, st.products, evaluator, tracer, log)
	validator := validation.MustNewValidator()

	// --- Zeebe workers ---
	var (
		zeebe   *camunda.Client
		workers *camunda.Workers
	)
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.Connect(ctx, camunda.ClientConfigFrom(cfg.Camunda), log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		readiness["zeebe"] = zeebe
		zapLog.Info("Zeebe client connected successfully")

		workers = camunda.NewWorkers(zeebe.GetClient(), log)

		if config.IsWorkerEnabled(cfg, ca.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, ca.TaskType)
			handler := ca.NewHandler(&ca.Config{Timeout: config.GetDuration(wcfg.Timeout)}, applicantSvc, obs, log)
			workers.Start(ca.TaskType, wcfg, handler)
		}
		if config.IsWorkerEnabled(cfg, lep.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, lep.TaskType)
			handler := lep.NewHandler(&lep.Config{Timeout: config.GetDuration(wcfg.Timeout)}, eligibilitySvc, validator, obs, log)
			workers.Start(lep.TaskType, wcfg, handler)
		}
		zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.Started()))
	}

	// --- HTTP API, health and metrics ---
	router := httptransport.NewRouter(httptransport.Deps{
		Applicants:     applicantSvc,
		Products:       productSvc,
		Eligibility:    eligibilitySvc,
		Validator:      validator,
		Logger:         log,
		Readiness:      readiness,
		RequestTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if workers != nil {
		workers.Close()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Mortgage service stopped gracefully")
}
