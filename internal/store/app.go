package store

import (
	"errors"
	"log/slog"
	"time"

	"github.com/foxzi/wadesk/internal/client"
	"github.com/foxzi/wadesk/internal/models"
)

// Route names used by the guard
const (
	RouteLogin    = "login"
	RouteRegister = "register"
)

// PublicRoutes never require a signed-in user
var PublicRoutes = []string{RouteRegister, "logout", "state", "version", "help", "completion"}

// AppConfig holds the dependencies of an App
type AppConfig struct {
	Client       *client.Client
	Mirror       Mirror
	Logger       *slog.Logger
	PollInterval time.Duration
	TickInterval time.Duration

	// OnCampaignTick, when set, receives every simulated campaign update
	OnCampaignTick func(models.Campaign)
}

// App wires every store to one API client and one persisted state. The
// client reads its bearer token from the session, and a 401 from any
// endpoint clears the session.
type App struct {
	Client    *client.Client
	Session   *Session
	Contacts  *Contacts
	Chats     *Chats
	Campaigns *Campaigns
	Templates *Templates
	Guard     *Guard

	pollInterval time.Duration
	logger       *slog.Logger
}

// NewApp creates the stores of one application session
func NewApp(cfg AppConfig) *App {
	logger := loggerOrDefault(cfg.Logger)
	api := cfg.Client

	session := NewSession(api, cfg.Mirror, logger)
	api.SetTokenSource(session)
	api.SetUnauthorizedHandler(session.Clear)

	campaignOpts := []CampaignOption{WithTickInterval(cfg.TickInterval)}
	if cfg.OnCampaignTick != nil {
		campaignOpts = append(campaignOpts, WithTickObserver(cfg.OnCampaignTick))
	}

	return &App{
		Client:    api,
		Session:   session,
		Contacts:  NewContacts(api, logger),
		Chats:     NewChats(api, cfg.Mirror, logger),
		Campaigns: NewCampaigns(api, cfg.Mirror, logger, campaignOpts...),
		Templates: NewTemplates(api, cfg.Mirror, logger),
		Guard:     NewGuard(session, RouteLogin, PublicRoutes...),

		pollInterval: cfg.PollInterval,
		logger:       logger,
	}
}

// Restore loads every persisted partition
func (a *App) Restore() error {
	return errors.Join(
		a.Session.Restore(),
		a.Chats.Restore(),
		a.Campaigns.Restore(),
		a.Templates.Restore(),
	)
}

// NewPoller creates a chat poller with the configured interval
func (a *App) NewPoller() *Poller {
	return NewPoller(a.Chats, a.pollInterval, a.logger)
}

// Close stops background work owned by the stores
func (a *App) Close() {
	a.Campaigns.Close()
}
