package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/client"
	"github.com/foxzi/wadesk/internal/config"
	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/persist"
	"github.com/foxzi/wadesk/internal/store"
)

var (
	cfg    *config.Config
	logger *slog.Logger
	state  *persist.Storage
	app    *store.App

	// campaignTicks receives simulation updates while a command watches them
	campaignTicks = make(chan models.Campaign, 64)
)

// offline commands never touch the API or the state file
var offline = map[string]bool{"": true, "version": true, "help": true, "completion": true}

// route returns the name of the top-level command cmd belongs to
func route(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	if !cmd.HasParent() {
		return ""
	}
	return cmd.Name()
}

func setupApp(cmd *cobra.Command, args []string) error {
	r := route(cmd)
	if offline[r] {
		return nil
	}

	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}
	logger = cfg.Logging.NewLogger(os.Stderr)

	state, err = persist.Open(cfg.State.Path)
	if err != nil {
		return err
	}

	app = store.NewApp(store.AppConfig{
		Client:       client.New(cfg.API.BaseURL, client.WithTimeout(cfg.API.Timeout)),
		Mirror:       state,
		Logger:       logger,
		PollInterval: cfg.Chat.PollInterval,
		TickInterval: cfg.Campaigns.TickInterval,
		OnCampaignTick: func(c models.Campaign) {
			select {
			case campaignTicks <- c:
			default:
			}
		},
	})
	if err := app.Restore(); err != nil {
		logger.Warn("failed to restore local state", "error", err)
	}

	if d := app.Guard.Check(r); !d.Allow {
		return fmt.Errorf("not signed in, run 'wadesk %s' first", d.Redirect)
	}
	return nil
}

func closeApp() {
	if app != nil {
		app.Close()
	}
	if state != nil {
		if err := state.Close(); err != nil {
			logger.Error("failed to close state file", "error", err)
		}
	}
}

// commandContext is cancelled on SIGINT or SIGTERM
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}
