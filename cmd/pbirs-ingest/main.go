// Package main provides the pbirs-ingest CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alcoccoque/pbirs-connector/internal/config"
	_ "github.com/alcoccoque/pbirs-connector/internal/connector/pbirs"
)

var (
	version = "0.1.0"

	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pbirs-ingest",
		Short:   "Extract Power BI Report Server metadata as catalog work units",
		Version: version,
		Long: `pbirs-ingest reads reports and their owners from a Power BI Report Server
REST API and emits dashboard, user and ownership work units.

Configuration comes from a YAML recipe (--config), an optional .env file,
and PBIRS_* environment variables, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath, envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			logger, err = cfg.Log.NewLogger(os.Stderr)
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML recipe")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(runCmd(), checkCmd(), datasetCmd())
	return cmd
}
