package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/thermocomfort/cmd/app"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "thermocomfort",
		Short: "Simulated occupied zone reporting PMV/PPD thermal comfort",
		Example: `  thermocomfort --config config.yaml
  THERMOCOMFORT_CONTROLLERS_MQTT_ENABLED=true thermocomfort`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := app.NewLogger(cfg.Log)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.Info().Str("config", configPath).Msg("thermocomfort starting")
			return app.Run(ctx, cfg, configPath, log)
		},
	}
	root.Flags().StringVar(&configPath, "config", "config.yaml", "path to config file (.yaml/.yml/.json/.toml)")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
