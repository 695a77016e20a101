package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify connectivity and credentials against the report server",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := newSource()
			if err != nil {
				return err
			}
			defer src.Close()

			result, err := src.ValidateConfig(cmd.Context())
			if err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("%s", result.Message)
			}

			desc := src.GetDescriptor()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (version %s)\n", desc.Title, result.Message, result.DetectedVersion)
			return nil
		},
	}
}
