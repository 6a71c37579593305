package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/outlate/internal/auth"
	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/config"
	"github.com/mmynk/outlate/internal/idgen"
	"github.com/mmynk/outlate/internal/metrics"
	"github.com/mmynk/outlate/internal/middleware"
	"github.com/mmynk/outlate/internal/ocr"
	"github.com/mmynk/outlate/internal/rpc"
	"github.com/mmynk/outlate/internal/service"
	"github.com/mmynk/outlate/internal/storage/sqlite"
	"github.com/mmynk/outlate/pkg/api/apiconnect"
	"github.com/mmynk/outlate/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.SetupWithLevel(cfg.LogLevel)
	if cfg.Dev() && os.Getenv("JWT_SECRET") == "" {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	ids, err := idgen.FromName(cfg.IDSource)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := sqlite.New(cfg.DBPath, sqlite.WithIDSource(ids))
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := calculator.New(
		calculator.WithTolerance(cfg.TotalTolerance),
		calculator.WithLogger(logger),
		calculator.WithMetrics(metrics.NewEngine(reg)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extractor ocr.Extractor
	if cfg.OCREnabled {
		gemini, err := ocr.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("initialize receipt scanner: %w", err)
		}
		extractor = gemini
		logger.Info("Receipt scanning enabled", "model", cfg.GeminiModel)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store, ids)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	service.Mount(r,
		service.NewAuthService(authenticator, jwtManager, store, logger),
		service.NewOutingService(store, engine, logger),
		service.NewReceiptService(store, engine, extractor, logger),
		rpc.HandlerOptions(
			middleware.MetricsInterceptor(metrics.NewRPC(reg)),
			middleware.LoggingInterceptor(logger),
			middleware.RequireAuth(jwtManager, apiconnect.PublicProcedures...),
		)...,
	)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		// h2c serves HTTP/2 without TLS, which Connect and gRPC clients need.
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost:%s", cfg.Port))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// The client is gone if this fails; there is nobody left to tell.
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
