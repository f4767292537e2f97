package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mock-status-feed/internal/broadcast"
	"mock-status-feed/internal/config"
	"mock-status-feed/internal/fakedata"
	"mock-status-feed/internal/logging"
	"mock-status-feed/internal/mirror"
)

type connectionCounter interface {
	Connections() int64
}

// healthHandler returns an http.HandlerFunc for /healthcheck
func healthHandler(feed connectionCounter, mirrorDriver string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":      "ok",
			"connections": feed.Connections(),
			"mirror":      mirrorDriver,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func healthMux(feed connectionCounter, mirrorDriver string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthcheck", healthHandler(feed, mirrorDriver))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func serveHealth(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &broadcast.BindError{Addr: addr, Err: err}
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Health server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server failed: %w", err)
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	m, err := mirror.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up mirror: %w", err)
	}
	defer m.Close()

	var echo io.Writer
	if cfg.Echo {
		echo = os.Stdout
	}

	feed := broadcast.NewServer(cfg.Addr(),
		broadcast.WithInterval(cfg.Interval),
		broadcast.WithGenerators(fakedata.Factory(cfg.Seed)),
		broadcast.WithEcho(echo),
		broadcast.WithMirror(m),
		broadcast.WithLogger(slog.Default()),
	)

	// Bind before anything else so an occupied port fails fast.
	ln, err := feed.Listen()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feed.Serve(gctx, ln)
	})
	if addr := cfg.HealthAddr(); addr != "" {
		g.Go(func() error {
			return serveHealth(gctx, addr, healthMux(feed, cfg.MirrorDriver))
		})
	}
	return g.Wait()
}

func main() {
	// Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	// Create a context that is canceled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		var bindErr *broadcast.BindError
		if errors.As(err, &bindErr) {
			logging.Logger.Error("Cannot listen", "addr", bindErr.Addr, "error", bindErr.Err)
		} else {
			logging.Logger.Error("Mock status feed failed", "error", err)
		}
		stop()
		os.Exit(1)
	}

	logging.Logger.Info("Shutdown complete")
}
