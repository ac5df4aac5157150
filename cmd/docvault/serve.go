package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/proofpanel/docvault/internal/handlers"
	"github.com/proofpanel/docvault/internal/hostdoc"
	"github.com/proofpanel/docvault/internal/render"
	"github.com/proofpanel/docvault/internal/server"
	"github.com/proofpanel/docvault/internal/services"
	"github.com/proofpanel/docvault/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the vault HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		// an unavailable workbook is served as 503s, not a startup failure
		host := hostdoc.OpenWorkbook(cfg.Vault.WorkbookPath)
		st := store.NewStore(host)
		defer st.Close()

		h := handlers.New(
			services.NewDatabaseService(st, cfg.Vault.RequiredTables),
			services.NewUploadService(st, render.NewImageRenderer()),
		)
		srv := server.NewServer(cfg, h.RegisterRoutes)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(ctx) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
