package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/actionhero/docsite/pkg/logging"
	"github.com/actionhero/docsite/pkg/shutdown"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the documentation server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.Address = addr
		}
		logger := newLogger(cfg)

		s, err := newSite(cfg, logger)
		if err != nil {
			return err
		}
		handler, router, err := s.Handler()
		if err != nil {
			return err
		}

		timeouts := cfg.TimeoutConfig()
		srv := &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.WebSocketWrite,
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		router.StartCleanup(ctx, timeouts.SessionCleanup, timeouts.SessionCleanup)

		sd := shutdown.NewHandler(&shutdown.Config{
			Timeout: timeouts.GracefulShutdown,
			Signals: shutdown.DefaultConfig().Signals,
			Logger:  logger,
		})
		sd.Register(shutdown.HTTPServerHook("http", srv.Shutdown))
		sd.RegisterFunc("live sessions", shutdown.PriorityWebSocket, router.Shutdown)

		serveErr := make(chan error, 1)
		go func() {
			logger.Info("docsite listening",
				logging.String("addr", cfg.Address),
				logging.Int("pages", s.Library().Len()),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		waitErr := make(chan error, 1)
		go func() { waitErr <- sd.Wait(ctx) }()

		if err := <-serveErr; err != nil {
			cancel()
			_ = sd.Shutdown()
			return fmt.Errorf("serving: %w", err)
		}
		// The listener only closes cleanly once shutdown has begun.
		if err := <-waitErr; err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("docsite stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides config")
	rootCmd.AddCommand(serveCmd)
}
