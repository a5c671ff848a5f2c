package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/foxzi/wadesk/internal/models"
)

// Contacts is a cache over the remote contact list. Mutations wait for the
// server round trip; on error the cache keeps its previous state.
type Contacts struct {
	api    ContactAPI
	logger *slog.Logger

	mu       sync.RWMutex
	contacts []models.Contact
	loading  bool
}

// NewContacts creates a contact store
func NewContacts(api ContactAPI, logger *slog.Logger) *Contacts {
	return &Contacts{
		api:    api,
		logger: loggerOrDefault(logger).With("component", "contacts"),
	}
}

// Fetch replaces the cache with the server list
func (c *Contacts) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	contacts, err := c.api.ListContacts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.logger.Error("failed to fetch contacts", "error", err)
		return fmt.Errorf("fetch contacts: %w", err)
	}
	c.contacts = contacts
	return nil
}

// Add creates a contact and appends the server entity
func (c *Contacts) Add(ctx context.Context, patch models.ContactPatch) (*models.Contact, error) {
	created, err := c.api.CreateContact(ctx, patch)
	if err != nil {
		c.logger.Error("failed to add contact", "error", err)
		return nil, fmt.Errorf("add contact: %w", err)
	}

	c.mu.Lock()
	c.contacts = append(c.contacts, *created)
	c.mu.Unlock()
	return created, nil
}

// Update applies a partial update and merges the returned fields by id
func (c *Contacts) Update(ctx context.Context, id string, patch models.ContactPatch) (*models.Contact, error) {
	updated, err := c.api.UpdateContact(ctx, id, patch)
	if err != nil {
		c.logger.Error("failed to update contact", "id", id, "error", err)
		return nil, fmt.Errorf("update contact: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.contacts {
		if c.contacts[i].ID == id {
			c.contacts[i] = *updated
			break
		}
	}
	return updated, nil
}

// Delete removes a contact
func (c *Contacts) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteContact(ctx, id); err != nil {
		c.logger.Error("failed to delete contact", "id", id, "error", err)
		return fmt.Errorf("delete contact: %w", err)
	}

	c.mu.Lock()
	c.contacts = slices.DeleteFunc(c.contacts, func(ct models.Contact) bool { return ct.ID == id })
	c.mu.Unlock()
	return nil
}

// DeleteMany removes several contacts. Contacts the server refused stay in
// the cache and their errors are joined.
func (c *Contacts) DeleteMany(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := c.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns a copy of the cached contacts
func (c *Contacts) List() []models.Contact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.contacts)
}

// Get returns a cached contact
func (c *Contacts) Get(id string) (models.Contact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ct := range c.contacts {
		if ct.ID == id {
			return ct, true
		}
	}
	return models.Contact{}, false
}

// Loading reports whether a fetch is in flight
func (c *Contacts) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}
