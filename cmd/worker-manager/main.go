package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"consumer-portal/internal/app"
	"consumer-portal/internal/common/camunda"
	"consumer-portal/internal/common/config"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/common/observability"

	ca "consumer-portal/internal/workers/consumer-data/consumer-advice"
	iq "consumer-portal/internal/workers/consumer-data/interpret-query"
	qpr "consumer-portal/internal/workers/consumer-data/query-product-recalls"
	qvr "consumer-portal/internal/workers/consumer-data/query-vehicle-recalls"
	sld "consumer-portal/internal/workers/consumer-data/search-live-data"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	tracing, err := observability.NewTracerProvider("worker-manager", cfg.Tracing.JaegerEndpoint)
	if err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services := app.NewServices(ctx, cfg, log, obs)

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("broker", cfg.Camunda.BrokerAddress))

	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.HandlerFunc) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), taskType, wcfg, handler, zapLog))
	}

	// Search Live Data
	{
		handler := sld.NewHandler(
			sld.LoadConfig(config.GetWorkerConfig(cfg, sld.TaskType)),
			services.Dispatcher,
			&searchLiveDataLoggerAdapter{log},
		)
		start(sld.TaskType, handler.Handle)
	}

	// Interpret Query
	{
		handler := iq.NewHandler(
			iq.LoadConfig(config.GetWorkerConfig(cfg, iq.TaskType)),
			services.Dispatcher,
			&interpretQueryLoggerAdapter{log},
		)
		start(iq.TaskType, handler.Handle)
	}

	// Consumer Advice
	{
		handler := ca.NewHandler(
			ca.LoadConfig(config.GetWorkerConfig(cfg, ca.TaskType)),
			services.Assistant,
			log,
		)
		start(ca.TaskType, handler.Handle)
	}

	// Product Recalls (CPSC)
	{
		handler := qpr.NewHandler(
			qpr.LoadConfig(config.GetWorkerConfig(cfg, qpr.TaskType)),
			services.CPSC,
			&productRecallsLoggerAdapter{log},
		)
		start(qpr.TaskType, handler.Handle)
	}

	// Vehicle Recalls (NHTSA)
	{
		handler := qvr.NewHandler(
			qvr.LoadConfig(config.GetWorkerConfig(cfg, qvr.TaskType)),
			services.NHTSA,
			log,
		)
		start(qvr.TaskType, handler.Handle)
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Logger adapters for workers that have their own Logger interfaces
type searchLiveDataLoggerAdapter struct {
	logger.Logger
}

func (a *searchLiveDataLoggerAdapter) With(fields map[string]interface{}) sld.Logger {
	return &searchLiveDataLoggerAdapter{a.Logger.With(fields)}
}

type interpretQueryLoggerAdapter struct {
	logger.Logger
}

func (a *interpretQueryLoggerAdapter) With(fields map[string]interface{}) iq.Logger {
	return &interpretQueryLoggerAdapter{a.Logger.With(fields)}
}

type productRecallsLoggerAdapter struct {
	logger.Logger
}

func (a *productRecallsLoggerAdapter) With(fields map[string]interface{}) qpr.Logger {
	return &productRecallsLoggerAdapter{a.Logger.With(fields)}
}
