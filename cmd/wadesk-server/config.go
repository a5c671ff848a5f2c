package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("  Database path: %s\n", cfg.Server.DatabasePath)
	fmt.Printf("  Token TTL: %s\n", cfg.Server.TokenTTL)
	fmt.Printf("  Delivery interval: %s\n", cfg.Server.DeliveryInterval)
	fmt.Printf("  Log level: %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)

	return nil
}
