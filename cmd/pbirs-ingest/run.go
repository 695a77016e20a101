package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alcoccoque/pbirs-connector/internal/connector/pbirs"
	"github.com/alcoccoque/pbirs-connector/internal/endpoint"
	"github.com/alcoccoque/pbirs-connector/internal/orchestration"
	"github.com/alcoccoque/pbirs-connector/internal/sink"
)

func runCmd() *cobra.Command {
	var sinkType, sinkPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract metadata and write work units to the configured sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sinkType != "" {
				cfg.Sink.Type = sinkType
			}
			if sinkPath != "" {
				cfg.Sink.Path = sinkPath
			}

			src, err := newSource()
			if err != nil {
				return err
			}
			defer src.Close()

			platform := cfg.PlatformName(pbirs.DefaultPlatformName)
			result, err := orchestration.Run(cmd.Context(), src, platform,
				func(ctx context.Context, run sink.Run) (sink.Sink, error) {
					return sink.New(ctx, cfg.Sink, run, logger)
				}, logger)
			if result != nil {
				if encErr := printReport(cmd, result); encErr != nil && err == nil {
					err = encErr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&sinkType, "sink", "", "override sink type: stdout, file, objectstore, postgres")
	cmd.Flags().StringVarP(&sinkPath, "output", "o", "", "output path for the file sink")
	return cmd
}

// printReport writes the run summary to stderr so a stdout sink stays clean.
func printReport(cmd *cobra.Command, result *orchestration.Result) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run report: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), string(out))
	return nil
}

func newSource() (endpoint.Source, error) {
	return endpoint.DefaultRegistry().Create(cfg.Source.Type, cfg.Source.Config, logger)
}
