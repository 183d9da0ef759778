package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/chris/forum-miniapp-store/pkg/config"
	"github.com/chris/forum-miniapp-store/pkg/endpoints"
	"github.com/chris/forum-miniapp-store/pkg/store"
	"github.com/chris/forum-miniapp-store/pkg/transport"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "forumctl",
		Short: "Load forum content into the mini-app state store",
		Long: `forumctl drives the forum mini-app state store.

Each load command dispatches one store action, waits for it to settle
and prints the resulting state slice as JSON. The serve command runs a
development server that exposes the store to a UI shell over HTTP and
pushes state changes over a WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional env file to load before reading the environment")

	rootCmd.AddCommand(loadCmds(&envFile)...)
	rootCmd.AddCommand(serveCmd(&envFile))

	return rootCmd
}

// app holds the dependencies shared by all commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// newApp loads configuration and sets up logging.
func newApp(envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	return &app{cfg: cfg, logger: logger}, nil
}

// newStore builds a store against the configured forum API.
func (a *app) newStore(opts ...store.Option) *store.Store {
	requester := transport.NewHTTPRequester(a.cfg.RequestTimeout, a.cfg.UserAgent)
	opts = append([]store.Option{
		store.WithLogger(a.logger),
		store.WithTimeout(a.cfg.RequestTimeout),
	}, opts...)
	return store.New(endpoints.New(a.cfg.APIBaseURL), requester, opts...)
}
