package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vincentbai/browsetrace-recorder/internal/database"
	"github.com/vincentbai/browsetrace-recorder/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local recording agent",
		Long: `Starts the HTTP agent that receives captured click and input events,
stores them per session, and serves generated scripts and reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(filepath.Dir(a.cfg.Database.Path), 0o755); err != nil {
				return fmt.Errorf("failed to create application directory: %w", err)
			}

			db, err := database.NewDatabase(a.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			a.logger.Info("Database opened", zap.String("path", a.cfg.Database.Path))

			return server.NewServer(db, a.cfg, a.logger).Start(cmd.Context())
		},
	}
}
