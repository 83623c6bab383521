package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apartment_app_echo/internal/app"
	"apartment_app_echo/internal/config"
	"apartment_app_echo/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "billingctl",
	Short: "Administrative commands for the apartment billing service",
	Long: `billingctl runs maintenance jobs against the billing database without
going through the HTTP API: scheduling background tasks, sweeping overdue
invoices, relaying outbox events, creating invoices and sending test
WhatsApp messages.

Configuration is read from the same environment (and .env file) as the
server and the worker.`,
	SilenceUsage: true,
}

func Execute() {
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.WithComponent("cmd")
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and applies its logging settings
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp is shared by every command that needs the database
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg)
}
