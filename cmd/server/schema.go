package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voxelfront/server/internal/items"
)

func newSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the item catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := items.SchemaJSON()
			if err != nil {
				return fmt.Errorf("generate schema: %w", err)
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write schema: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the schema to a file instead of stdout")

	return cmd
}
