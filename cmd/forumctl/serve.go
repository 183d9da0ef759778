package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris/forum-miniapp-store/pkg/handlers"
	"github.com/chris/forum-miniapp-store/pkg/metrics"
	"github.com/chris/forum-miniapp-store/pkg/middleware"
	"github.com/chris/forum-miniapp-store/pkg/notify"
	"github.com/chris/forum-miniapp-store/pkg/store"
	"github.com/chris/forum-miniapp-store/pkg/websockets"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(envFile *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development server for a UI shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*envFile)
			if err != nil {
				return err
			}
			if port == "" {
				port = a.cfg.HTTPPort
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a, ":"+port, prometheus.DefaultRegisterer, promhttp.Handler())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (default: HTTP_PORT)")
	return cmd
}

// newServer wires the store, hub and HTTP surface together.
// The returned cleanup closes the store and stops forwarding.
func newServer(a *app, reg prometheus.Registerer, metricsHandler http.Handler) (http.Handler, *store.Store, func()) {
	hub := websockets.NewHub(a.logger)
	s := a.newStore(
		store.WithObserver(metrics.New(metrics.WithRegistry(reg))),
		store.WithNotifier(notify.Multi{notify.NewLogNotifier(a.logger), hub}),
	)

	events, unsubscribe := s.Watch(64)
	forwardCtx, cancelForward := context.WithCancel(context.Background())
	go hub.Forward(forwardCtx, events)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.NewStructuredLogger(a.logger))

	handlers.NewApiHandler(s).Register(router)
	router.Handle("/ws", hub)
	router.Handle("/metrics", metricsHandler)

	cleanup := func() {
		unsubscribe()
		cancelForward()
		s.Close()
	}
	return router, s, cleanup
}

func serve(ctx context.Context, a *app, addr string, reg prometheus.Registerer, metricsHandler http.Handler) error {
	router, _, cleanup := newServer(a, reg, metricsHandler)
	defer cleanup()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", "addr", listener.Addr().String(), "api", a.cfg.APIBaseURL)
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
