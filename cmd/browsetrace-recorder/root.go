package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vincentbai/browsetrace-recorder/internal/config"
	"github.com/vincentbai/browsetrace-recorder/internal/observability"
)

// app carries what PersistentPreRunE resolves for the subcommands.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "browsetrace-recorder",
		Short:         "Record browser interactions and turn them into automation scripts.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), a.configFile)
			if err != nil {
				// Fall back to a console logger so the failure is still reported.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "browsetrace-recorder"})
				return err
			}
			observability.InitializeLogger(cfg.Logger)

			a.cfg = cfg
			a.logger = observability.GetLogger()
			a.logger.Debug("Configuration loaded", zap.String("version", Version), zap.String("database", cfg.Database.Path))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newServeCmd(a),
		newGenerateCmd(a),
		newReportCmd(a),
		newFormatsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func execute(ctx context.Context, args []string) error {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	defer observability.Sync()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
