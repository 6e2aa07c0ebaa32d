package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/handler"
	"github.com/mmynk/splitledger/internal/handler/server"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/backend"
	"github.com/mmynk/splitledger/pkg/logging"
	"github.com/mmynk/splitledger/pkg/money"
)

func main() {
	cfg := config.Load()
	logging.Setup()

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.StoreDriver)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	opts := []ledger.Option{ledger.WithMetrics(m)}
	if cfg.CacheSize > 0 {
		opts = append(opts, ledger.WithCache(cfg.CacheSize, cfg.CacheTTL))
	}
	engine := ledger.New(store, opts...)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	currency := money.Currency{Exponent: cfg.CurrencyExponent, Symbol: cfg.CurrencySymbol}

	mux := http.NewServeMux()

	// REST API for the web client
	server.SetupRoutes(mux, handler.NewHandler(engine, currency), jwtManager, m)

	// Connect RPC; auth runs first so the logging interceptor sees the principal
	ledgerPath, ledgerHandler := service.NewLedgerServiceHandler(
		service.NewLedgerService(engine),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor()),
	)
	mux.Handle(ledgerPath, m.Instrument(service.LedgerServiceName, ledgerHandler))

	mux.Handle("GET /metrics", metrics.Handler(reg))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := server.NewServer(mux, ":"+cfg.Port, cfg.ShutdownTimeout)
	return srv.Run(ctx)
}
