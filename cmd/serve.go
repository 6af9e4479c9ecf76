package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/james2654817/sales-dashboard-backend/internal/auth"
	"github.com/james2654817/sales-dashboard-backend/internal/report"
	"github.com/james2654817/sales-dashboard-backend/internal/server"
	"github.com/james2654817/sales-dashboard-backend/pkg/notion"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		users, err := cfg.UserTable()
		if err != nil {
			return err
		}

		gate := auth.NewGate(users, cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
		client := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit))
		assembler := report.NewAssembler(client, cfg.GroupSpecs())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.New(gate, assembler).Handler(cfg.Server.AllowedOrigins),
		}

		go shutdownOnCancel(ctx, srv, 10*time.Second)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownOnCancel waits for ctx cancellation, then drains in-flight
// requests on a fresh timeout context. The signal context is already
// done at that point and would abort the drain immediately.
func shutdownOnCancel(ctx context.Context, srv *http.Server, timeout time.Duration) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
