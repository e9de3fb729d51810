package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the server CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voxelfront",
		Short: "Voxelfront authoritative combat server",
		Long: `Voxelfront runs the authoritative combat simulation for a voxel
shooter: inventories, weapons, hit resolution and destructible terrain.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSchemaCmd())

	return cmd
}
