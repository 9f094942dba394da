package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/backend"
	"github.com/imrishuroy/go-tailor-orderflow/internal/config"
	"github.com/imrishuroy/go-tailor-orderflow/internal/desk"
	"github.com/imrishuroy/go-tailor-orderflow/internal/notify"
	"github.com/imrishuroy/go-tailor-orderflow/internal/session"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

const recentOrders = 10

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadDesk()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.LogLevel)

	sessions := session.NewStore(cfg.SessionFile)
	if _, err := sessions.Load(); err != nil {
		slog.Warn("no usable session, backend calls will fail until you log in", "file", cfg.SessionFile, "error", err)
	}

	api := backend.New(cfg.BackendURL, sessions, cfg.BackendTimeout)
	d := desk.New(api, validation.New(), notify.New(), desk.Config{
		OrderBannerDelay:    cfg.OrderBannerDelay,
		CustomerBannerDelay: cfg.CustomerBannerDelay,
		DefaultPassword:     cfg.DefaultPassword,
		RecentOrders:        recentOrders,
	})
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Best effort; failures are logged and the lists load on first use.
	_ = d.Customers.Refresh(ctx)
	_ = d.RefreshOrders(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           desk.NewRouter(d),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("order desk listening", "addr", srv.Addr, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("desk server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
