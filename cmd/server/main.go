package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tabkeeper/tabkeeper/internal/config"
	"github.com/tabkeeper/tabkeeper/internal/handler"
	"github.com/tabkeeper/tabkeeper/internal/middleware"
	"github.com/tabkeeper/tabkeeper/internal/service"
	"github.com/tabkeeper/tabkeeper/internal/storage/sqlite"
	"github.com/tabkeeper/tabkeeper/pkg/logging"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.App.LogLevel)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	mux := http.NewServeMux()
	h := handler.New(
		service.NewOrderService(store),
		service.NewLedgerService(store),
		service.NewPaymentService(store),
	)
	h.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Logging and metrics middleware, then h2c for HTTP/2 without TLS.
	wrapped := middleware.RequestLogger(middleware.Metrics(corsMiddleware(mux)))
	h2cHandler := h2c.NewHandler(wrapped, &http2.Server{})

	slog.Info("Server starting", "address", cfg.HTTP.Addr)
	if err := http.ListenAndServe(cfg.HTTP.Addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
