package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/config"
	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/server"
	"github.com/foxzi/wadesk/internal/server/db"
	"github.com/foxzi/wadesk/internal/server/repository"
)

// Demo account created by seed
const (
	demoEmail    = "demo@wadesk.local"
	demoPassword = "demo1234"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo contacts, chats, templates and campaigns",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Server.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	return seedIfEmpty(database, cfg.Logging.NewLogger(os.Stderr))
}

// seedIfEmpty loads demo data and a demo account unless users exist
func seedIfEmpty(database *db.DB, logger *slog.Logger) error {
	users := repository.NewUserRepository(database.DB)
	n, err := users.Count()
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("database already has users, skipping seed", "users", n)
		return nil
	}

	hash, err := server.HashPassword(demoPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	demo := &models.User{Name: "Demo Agent", Email: demoEmail, Role: models.RoleAdmin}
	if err := users.Create(demo, hash); err != nil {
		return err
	}

	res, err := server.Seed(database.DB)
	if err != nil {
		return err
	}

	logger.Info("demo data loaded",
		"contacts", res.Contacts,
		"chats", res.Chats,
		"messages", res.Messages,
		"templates", res.Templates,
		"campaigns", res.Campaigns,
	)
	fmt.Printf("Demo account: %s / %s\n", demoEmail, demoPassword)
	return nil
}
