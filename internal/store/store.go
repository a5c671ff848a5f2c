// Package store holds the client-side state of the dashboard: session,
// contacts, chats, campaigns and templates. Each store is a mutex-guarded
// cache over the REST API, optionally mirrored to local persisted state.
package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/persist"
)

// ErrNotFound is returned when an id is not in the local cache
var ErrNotFound = errors.New("not found")

// Mirror persists store snapshots between runs
type Mirror interface {
	Save(p persist.Partition, v any) error
	Load(p persist.Partition, v any) (bool, error)
	Clear(p persist.Partition) error
}

type noMirror struct{}

func (noMirror) Save(persist.Partition, any) error         { return nil }
func (noMirror) Load(persist.Partition, any) (bool, error) { return false, nil }
func (noMirror) Clear(persist.Partition) error             { return nil }

func mirrorOrNoop(m Mirror) Mirror {
	if m == nil {
		return noMirror{}
	}
	return m
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// AuthAPI is the part of the REST API the session store uses
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*models.AuthResult, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, patch models.ProfileUpdate) (*models.User, error)
}

// ContactAPI is the part of the REST API the contact store uses
type ContactAPI interface {
	ListContacts(ctx context.Context) ([]models.Contact, error)
	CreateContact(ctx context.Context, patch models.ContactPatch) (*models.Contact, error)
	UpdateContact(ctx context.Context, id string, patch models.ContactPatch) (*models.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// ChatAPI is the part of the REST API the chat store uses
type ChatAPI interface {
	ListChats(ctx context.Context) ([]models.ChatSession, error)
	StartChat(ctx context.Context, contactID string) (*models.ChatSession, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID string, req models.SendMessageRequest) (*models.Message, error)
}

// CampaignAPI is the part of the REST API the campaign store uses
type CampaignAPI interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	CreateCampaign(ctx context.Context, req models.CampaignRequest) (*models.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	UpdateCampaignStatus(ctx context.Context, id string, status models.CampaignStatus) (*models.Campaign, error)
}

// TemplateAPI is the part of the REST API the template store uses
type TemplateAPI interface {
	ListTemplates(ctx context.Context) ([]models.Template, error)
	CreateTemplate(ctx context.Context, t *models.Template) (*models.Template, error)
	UpdateTemplate(ctx context.Context, id string, patch models.TemplatePatch) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}
