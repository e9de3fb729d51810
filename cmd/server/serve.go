package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voxelfront/server/internal/app"
	"voxelfront/server/internal/config"
	"voxelfront/server/internal/telemetry"
)

type serveConfig struct {
	configFile string
	// run is replaced in tests.
	run func(ctx context.Context, cfg app.Config) error
}

func newServeCmd() *cobra.Command {
	return newServeCmdWith(&serveConfig{run: app.Run})
}

func newServeCmdWith(cfg *serveConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and HTTP/websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.configFile, "config", "", "config file path")
	config.BindFlags(cmd.Flags())

	return cmd
}

func runServe(cmd *cobra.Command, cfg *serveConfig) error {
	settings, err := config.Load(config.LoadOptions{
		Path:  cfg.configFile,
		Flags: cmd.Flags(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := telemetry.WrapLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
	if err := cfg.run(ctx, app.Config{Settings: settings, Logger: logger, Stdout: cmd.OutOrStdout()}); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
