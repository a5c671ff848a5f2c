package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/persist"
)

var errBackend = errors.New("backend unavailable")

// fakeAPI implements every store API interface in memory
type fakeAPI struct {
	mu sync.Mutex

	user     models.User
	token    string
	loginErr error

	contacts   []models.Contact
	contactErr map[string]error

	chats      []models.ChatSession
	messages   map[string][]models.Message
	sendErr    error
	sendID     string
	sendCalls  int
	startCalls int

	campaigns   []models.Campaign
	statusCalls int

	templates   []models.Template
	submitted   []models.Template
	templateErr error

	seq int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user:       models.User{ID: "u1", Name: "Agent", Email: "agent@example.com", Role: models.RoleAgent},
		token:      "tok-1",
		contactErr: make(map[string]error),
		messages:   make(map[string][]models.Message),
	}
}

func (f *fakeAPI) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*models.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.AuthResult{User: f.user, Token: f.token}, nil
}

func (f *fakeAPI) Register(_ context.Context, name, email, password string) (*models.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	u := f.user
	u.Name, u.Email = name, email
	return &models.AuthResult{User: u, Token: f.token}, nil
}

func (f *fakeAPI) Me(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.user
	return &u, nil
}

func (f *fakeAPI) UpdateMe(_ context.Context, patch models.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if patch.Name != nil {
		f.user.Name = *patch.Name
	}
	if patch.Avatar != nil {
		f.user.Avatar = *patch.Avatar
	}
	u := f.user
	return &u, nil
}

func (f *fakeAPI) ListContacts(context.Context) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.contactErr["list"]; err != nil {
		return nil, err
	}
	return slices.Clone(f.contacts), nil
}

func (f *fakeAPI) CreateContact(_ context.Context, patch models.ContactPatch) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Contact{ID: f.nextID("c")}
	patch.Apply(&c)
	f.contacts = append(f.contacts, c)
	return &c, nil
}

func (f *fakeAPI) UpdateContact(_ context.Context, id string, patch models.ContactPatch) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.contactErr[id]; err != nil {
		return nil, err
	}
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			patch.Apply(&f.contacts[i])
			c := f.contacts[i]
			return &c, nil
		}
	}
	return nil, errBackend
}

func (f *fakeAPI) DeleteContact(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.contactErr[id]; err != nil {
		return err
	}
	f.contacts = slices.DeleteFunc(f.contacts, func(c models.Contact) bool { return c.ID == id })
	return nil
}

func (f *fakeAPI) ListChats(context.Context) ([]models.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.chats), nil
}

func (f *fakeAPI) StartChat(_ context.Context, contactID string) (*models.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	for _, ch := range f.chats {
		if ch.ContactID == contactID {
			return &ch, nil
		}
	}
	ch := models.ChatSession{ID: f.nextID("chat"), ContactID: contactID, Status: models.ChatActive}
	f.chats = append(f.chats, ch)
	return &ch, nil
}

func (f *fakeAPI) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.messages[chatID]), nil
}

func (f *fakeAPI) SendMessage(_ context.Context, chatID string, req models.SendMessageRequest) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	id := f.sendID
	if id == "" {
		id = f.nextID("srv")
	}
	m := models.Message{
		ID:        id,
		ChatID:    chatID,
		SenderID:  models.SenderMe,
		Text:      req.Text,
		Type:      req.Type,
		MediaURL:  req.MediaURL,
		Status:    models.MessageSent,
		Timestamp: time.Now(),
	}
	f.messages[chatID] = append(f.messages[chatID], m)
	return &m, nil
}

func (f *fakeAPI) ListCampaigns(context.Context) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.campaigns), nil
}

func (f *fakeAPI) CreateCampaign(_ context.Context, req models.CampaignRequest) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Campaign{
		ID:            f.nextID("cmp"),
		Name:          req.Name,
		Status:        req.Status,
		TotalContacts: req.TotalContacts,
		TemplateID:    req.TemplateID,
		TemplateName:  req.TemplateName,
		Goal:          req.Goal,
		ScheduledDate: req.ScheduledDate,
		CreatedAt:     time.Now(),
	}
	f.campaigns = append(f.campaigns, c)
	return &c, nil
}

func (f *fakeAPI) DeleteCampaign(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns = slices.DeleteFunc(f.campaigns, func(c models.Campaign) bool { return c.ID == id })
	return nil
}

func (f *fakeAPI) UpdateCampaignStatus(_ context.Context, id string, status models.CampaignStatus) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	for i := range f.campaigns {
		if f.campaigns[i].ID == id {
			f.campaigns[i].Status = status
			c := f.campaigns[i]
			return &c, nil
		}
	}
	return nil, errBackend
}

func (f *fakeAPI) ListTemplates(context.Context) ([]models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.templates), nil
}

func (f *fakeAPI) CreateTemplate(_ context.Context, t *models.Template) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *t
	created.ID = f.nextID("wa")
	created.Status = models.TemplatePending
	f.templates = append(f.templates, created)
	f.submitted = append(f.submitted, *t)
	return &created, nil
}

func (f *fakeAPI) UpdateTemplate(_ context.Context, id string, patch models.TemplatePatch) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.templateErr != nil {
		return nil, f.templateErr
	}
	for i := range f.templates {
		if f.templates[i].ID == id {
			patch.Apply(&f.templates[i])
			f.templates[i].Status = models.TemplatePending
			tpl := f.templates[i]
			return &tpl, nil
		}
	}
	return nil, errBackend
}

func (f *fakeAPI) DeleteTemplate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.templateErr != nil {
		return f.templateErr
	}
	n := len(f.templates)
	f.templates = slices.DeleteFunc(f.templates, func(t models.Template) bool { return t.ID == id })
	if len(f.templates) == n {
		return errBackend
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openMirror(t *testing.T, path string) *persist.Storage {
	t.Helper()
	s, err := persist.Open(path)
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func tempStatePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "state.db")
}
