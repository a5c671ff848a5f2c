package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/persist"
)

// DraftIDPrefix marks templates that only exist locally
const DraftIDPrefix = "tpl-"

// Defaults applied to new drafts
const (
	DefaultTemplateLanguage = "en_US"
	DefaultTemplateCategory = models.CategoryMarketing
)

type templateState struct {
	Templates []models.Template       `json:"templates"`
	Query     string                  `json:"query,omitempty"`
	Category  models.TemplateCategory `json:"category,omitempty"`
}

// TemplateOption configures a template store
type TemplateOption func(*Templates)

// WithDraftIDs replaces the generator for the part of draft ids that
// follows DraftIDPrefix
func WithDraftIDs(gen func() string) TemplateOption {
	return func(t *Templates) { t.newID = gen }
}

// WithTemplateClock replaces the time source used for lastUpdated
func WithTemplateClock(now func() time.Time) TemplateOption {
	return func(t *Templates) { t.now = now }
}

// Templates holds message templates plus the search and category filter
type Templates struct {
	api    TemplateAPI
	mirror Mirror
	logger *slog.Logger
	newID  func() string
	now    func() time.Time

	mu        sync.RWMutex
	templates []models.Template
	query     string
	category  models.TemplateCategory
	loading   bool
}

// NewTemplates creates a template store
func NewTemplates(api TemplateAPI, mirror Mirror, logger *slog.Logger, opts ...TemplateOption) *Templates {
	t := &Templates{
		api:    api,
		mirror: mirrorOrNoop(mirror),
		logger: loggerOrDefault(logger).With("component", "templates"),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Restore loads persisted templates and filters
func (t *Templates) Restore() error {
	var st templateState
	found, err := t.mirror.Load(persist.PartitionTemplates, &st)
	if err != nil {
		return fmt.Errorf("restore templates: %w", err)
	}
	if !found {
		return nil
	}

	t.mu.Lock()
	t.templates = st.Templates
	t.query = st.Query
	t.category = st.Category
	t.mu.Unlock()
	return nil
}

func (t *Templates) persistLocked() {
	st := templateState{Templates: t.templates, Query: t.query, Category: t.category}
	if err := t.mirror.Save(persist.PartitionTemplates, st); err != nil {
		t.logger.Error("failed to persist templates", "error", err)
	}
}

func (t *Templates) indexLocked(id string) int {
	return slices.IndexFunc(t.templates, func(tpl models.Template) bool { return tpl.ID == id })
}

// IsDraft reports whether a template id was assigned locally
func IsDraft(id string) bool {
	return strings.HasPrefix(id, DraftIDPrefix)
}

// Fetch replaces the cache with the server list, keeping local drafts
func (t *Templates) Fetch(ctx context.Context) error {
	t.mu.Lock()
	t.loading = true
	t.mu.Unlock()

	templates, err := t.api.ListTemplates(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false

	if err != nil {
		t.logger.Error("failed to fetch templates", "error", err)
		return fmt.Errorf("fetch templates: %w", err)
	}

	for _, tpl := range t.templates {
		if IsDraft(tpl.ID) {
			templates = append(templates, tpl)
		}
	}
	t.templates = templates
	t.persistLocked()
	return nil
}

// Add creates a local pending draft from a partial template
func (t *Templates) Add(patch models.TemplatePatch) (models.Template, error) {
	if patch.Name == nil || strings.TrimSpace(*patch.Name) == "" {
		return models.Template{}, errors.New("template name is required")
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return models.Template{}, fmt.Errorf("invalid template category %q", *patch.Category)
	}

	tpl := models.Template{
		ID:          DraftIDPrefix + t.newID(),
		Language:    DefaultTemplateLanguage,
		Category:    DefaultTemplateCategory,
		Status:      models.TemplatePending,
		Components:  models.Components{},
		LastUpdated: t.now(),
	}
	patch.Apply(&tpl)

	t.mu.Lock()
	t.templates = append(t.templates, tpl)
	t.persistLocked()
	t.mu.Unlock()
	return tpl, nil
}

// Update merges a partial template into a cached one. Drafts are edited
// locally and get a fresh lastUpdated; server templates are updated on the
// server and the cache takes its answer.
func (t *Templates) Update(ctx context.Context, id string, patch models.TemplatePatch) (models.Template, error) {
	if patch.Category != nil && !patch.Category.Valid() {
		return models.Template{}, fmt.Errorf("invalid template category %q", *patch.Category)
	}

	if !IsDraft(id) {
		if _, ok := t.Get(id); !ok {
			return models.Template{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
		}
		updated, err := t.api.UpdateTemplate(ctx, id, patch)
		if err != nil {
			t.logger.Error("failed to update template", "id", id, "error", err)
			return models.Template{}, fmt.Errorf("update template: %w", err)
		}

		t.mu.Lock()
		defer t.mu.Unlock()
		if idx := t.indexLocked(id); idx >= 0 {
			t.templates[idx] = *updated
		} else {
			t.templates = append(t.templates, *updated)
		}
		t.persistLocked()
		return *updated, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexLocked(id)
	if idx < 0 {
		return models.Template{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	patch.Apply(&t.templates[idx])
	t.templates[idx].LastUpdated = t.now()
	t.persistLocked()
	return t.templates[idx], nil
}

// Delete removes a template. Server templates are deleted on the server
// first; drafts only exist in the cache.
func (t *Templates) Delete(ctx context.Context, id string) error {
	if _, ok := t.Get(id); !ok {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	if !IsDraft(id) {
		if err := t.api.DeleteTemplate(ctx, id); err != nil {
			t.logger.Error("failed to delete template", "id", id, "error", err)
			return fmt.Errorf("delete template: %w", err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if idx := t.indexLocked(id); idx >= 0 {
		t.templates = slices.Delete(t.templates, idx, idx+1)
		t.persistLocked()
	}
	return nil
}

// Submit posts a cached template for approval and replaces the local entry
// with the server's
func (t *Templates) Submit(ctx context.Context, id string) (models.Template, error) {
	t.mu.RLock()
	idx := t.indexLocked(id)
	if idx < 0 {
		t.mu.RUnlock()
		return models.Template{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	tpl := t.templates[idx]
	t.mu.RUnlock()

	if tpl.Components.Body() == "" {
		return models.Template{}, errors.New("template body is required")
	}

	created, err := t.api.CreateTemplate(ctx, &tpl)
	if err != nil {
		t.logger.Error("failed to submit template", "id", id, "error", err)
		return models.Template{}, fmt.Errorf("submit template: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if idx := t.indexLocked(id); idx >= 0 {
		t.templates[idx] = *created
	} else {
		t.templates = append(t.templates, *created)
	}
	t.persistLocked()

	t.logger.Info("template submitted", "draft_id", id, "id", created.ID)
	return *created, nil
}

// SetSearchQuery sets the case-insensitive name filter
func (t *Templates) SetSearchQuery(q string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query = q
	t.persistLocked()
}

// SetFilterCategory sets the category filter; empty matches all
func (t *Templates) SetFilterCategory(c models.TemplateCategory) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.category = c
	t.persistLocked()
}

// Filtered returns the templates matching the search query and category
func (t *Templates) Filtered() []models.Template {
	t.mu.RLock()
	defer t.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(t.query))
	var out []models.Template
	for _, tpl := range t.templates {
		if q != "" && !strings.Contains(strings.ToLower(tpl.Name), q) {
			continue
		}
		if t.category != "" && tpl.Category != t.category {
			continue
		}
		out = append(out, tpl)
	}
	return out
}

// List returns a copy of every cached template
func (t *Templates) List() []models.Template {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.templates)
}

// Get returns a cached template
func (t *Templates) Get(id string) (models.Template, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if idx := t.indexLocked(id); idx >= 0 {
		return t.templates[idx], true
	}
	return models.Template{}, false
}

// Loading reports whether a fetch is in flight
func (t *Templates) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading
}
