package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alcoccoque/pbirs-connector/internal/connector/pbirs"
)

type datasetView struct {
	Dataset    *pbirs.DataSet    `json:"dataset"`
	DataSource *pbirs.DataSource `json:"dataSource"`
}

func datasetCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "dataset [id]",
		Short: "Show a shared dataset and its resolved data source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !list && len(args) == 0 {
				return fmt.Errorf("dataset id is required (or use --list)")
			}

			pcfg, err := pbirs.ParseConfig(cfg.Source.Config)
			if err != nil {
				return err
			}
			src, err := pbirs.New(pcfg, logger)
			if err != nil {
				return err
			}
			defer src.Close()
			ctx := cmd.Context()

			if list {
				datasets, err := src.FetchDatasets(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, datasets)
			}

			ds, err := src.FetchDataset(ctx, args[0])
			if err != nil {
				return err
			}
			if ds == nil {
				return fmt.Errorf("dataset %s not found", args[0])
			}
			source, err := src.FetchDataSource(ctx, ds)
			if err != nil {
				return err
			}
			if source != nil {
				redacted := source.Redacted()
				source = &redacted
			}
			return printJSON(cmd, datasetView{Dataset: ds, DataSource: source})
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list every shared dataset instead")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
