package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/persist"
)

// CampaignOption configures a campaign store
type CampaignOption func(*Campaigns)

// WithTickInterval sets the simulation tick period
func WithTickInterval(d time.Duration) CampaignOption {
	return func(c *Campaigns) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithRand sets the random source used by the simulation
func WithRand(r *rand.Rand) CampaignOption {
	return func(c *Campaigns) { c.rnd = r }
}

// WithTickObserver registers a callback run after every simulation tick
// with a snapshot of the campaign
func WithTickObserver(fn func(models.Campaign)) CampaignOption {
	return func(c *Campaigns) { c.observer = fn }
}

// Campaigns holds campaigns and owns their progress simulations
type Campaigns struct {
	api      CampaignAPI
	mirror   Mirror
	logger   *slog.Logger
	tick     time.Duration
	observer func(models.Campaign)

	mu        sync.Mutex
	campaigns []models.Campaign
	loading   bool
	rnd       *rand.Rand
	tasks     map[string]*simTask
	wg        sync.WaitGroup
}

// NewCampaigns creates a campaign store
func NewCampaigns(api CampaignAPI, mirror Mirror, logger *slog.Logger, opts ...CampaignOption) *Campaigns {
	c := &Campaigns{
		api:    api,
		mirror: mirrorOrNoop(mirror),
		logger: loggerOrDefault(logger).With("component", "campaigns"),
		tick:   time.Second,
		tasks:  make(map[string]*simTask),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return c
}

// Restore loads the persisted campaign list
func (c *Campaigns) Restore() error {
	var campaigns []models.Campaign
	found, err := c.mirror.Load(persist.PartitionCampaigns, &campaigns)
	if err != nil {
		return fmt.Errorf("restore campaigns: %w", err)
	}
	if !found {
		return nil
	}

	c.mu.Lock()
	c.campaigns = campaigns
	c.mu.Unlock()
	return nil
}

// persistLocked mirrors the campaign list; c.mu must be held
func (c *Campaigns) persistLocked() {
	if err := c.mirror.Save(persist.PartitionCampaigns, c.campaigns); err != nil {
		c.logger.Error("failed to persist campaigns", "error", err)
	}
}

func (c *Campaigns) indexLocked(id string) int {
	return slices.IndexFunc(c.campaigns, func(cp models.Campaign) bool { return cp.ID == id })
}

// Fetch replaces the cache with the server list. Progress that only exists
// locally (a running or finished simulation) is kept.
func (c *Campaigns) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	campaigns, err := c.api.ListCampaigns(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.logger.Error("failed to fetch campaigns", "error", err)
		return fmt.Errorf("fetch campaigns: %w", err)
	}

	for i := range campaigns {
		idx := c.indexLocked(campaigns[i].ID)
		if idx < 0 {
			continue
		}
		local := c.campaigns[idx]
		if _, running := c.tasks[local.ID]; running || local.SentCount > campaigns[i].SentCount {
			campaigns[i] = local
		}
	}
	c.campaigns = campaigns
	c.persistLocked()
	return nil
}

// Create posts a new campaign and appends the server entity
func (c *Campaigns) Create(ctx context.Context, req models.CampaignRequest) (*models.Campaign, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("campaign name is required")
	}
	if req.TotalContacts < 0 {
		return nil, errors.New("total contacts must not be negative")
	}
	if req.Status == "" {
		req.Status = models.CampaignDraft
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("invalid campaign status %q", req.Status)
	}

	created, err := c.api.CreateCampaign(ctx, req)
	if err != nil {
		c.logger.Error("failed to create campaign", "name", req.Name, "error", err)
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	c.mu.Lock()
	c.campaigns = append(c.campaigns, *created)
	c.persistLocked()
	c.mu.Unlock()
	return created, nil
}

// Duplicate posts a copy of a campaign: new identity, draft status, zero
// counters and a " (Copy)" name suffix
func (c *Campaigns) Duplicate(ctx context.Context, id string) (*models.Campaign, error) {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	req := c.campaigns[idx].CopyRequest()
	c.mu.Unlock()

	return c.Create(ctx, req)
}

// Delete removes a campaign on the server and locally, stopping its
// simulation
func (c *Campaigns) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteCampaign(ctx, id); err != nil {
		c.logger.Error("failed to delete campaign", "id", id, "error", err)
		return fmt.Errorf("delete campaign: %w", err)
	}

	c.mu.Lock()
	c.stopLocked(id)
	c.campaigns = slices.DeleteFunc(c.campaigns, func(cp models.Campaign) bool { return cp.ID == id })
	c.persistLocked()
	c.mu.Unlock()
	return nil
}

// UpdateStatus sets a campaign's status locally and reports it to the
// server. A server failure is logged only.
func (c *Campaigns) UpdateStatus(ctx context.Context, id string, status models.CampaignStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid campaign status %q", status)
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	c.campaigns[idx].Status = status
	c.persistLocked()
	c.mu.Unlock()

	if _, err := c.api.UpdateCampaignStatus(ctx, id, status); err != nil {
		c.logger.Warn("failed to report campaign status", "id", id, "status", status, "error", err)
	}
	return nil
}

// List returns a copy of the cached campaigns
func (c *Campaigns) List() []models.Campaign {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.campaigns)
}

// Get returns a cached campaign
func (c *Campaigns) Get(id string) (models.Campaign, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		return c.campaigns[idx], true
	}
	return models.Campaign{}, false
}

// Loading reports whether a fetch is in flight
func (c *Campaigns) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}
