package repository

import (
	"database/sql"
	"testing"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/server/db"
)

// setupTestDB creates an in-memory SQLite database with all migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.NewMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database.DB
}

func createTestContact(t *testing.T, sqlDB *sql.DB, name string) *models.Contact {
	t.Helper()
	c := &models.Contact{Name: name, Phone: "+1555" + name}
	if err := NewContactRepository(sqlDB).Create(c); err != nil {
		t.Fatalf("Create contact: %v", err)
	}
	return c
}

func TestUserRepository(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewUserRepository(sqlDB)

	u := &models.User{Name: "Agent", Email: " Agent@Example.com "}
	if err := repo.Create(u, "hash"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == "" || u.Email != "agent@example.com" || u.Role != models.RoleAgent {
		t.Errorf("Create() user = %+v", u)
	}

	got, hash, err := repo.GetByEmail("AGENT@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got == nil || got.ID != u.ID || hash != "hash" {
		t.Errorf("GetByEmail() = %+v, %q", got, hash)
	}

	if err := repo.Create(&models.User{Name: "Dup", Email: "agent@example.com"}, "x"); err == nil {
		t.Error("Create() should reject a duplicate email")
	}

	got.Name = "Renamed"
	got.Avatar = "https://example.com/a.png"
	if err := repo.UpdateProfile(got); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	byID, err := repo.GetByID(u.ID)
	if err != nil || byID == nil || byID.Name != "Renamed" || byID.Avatar == "" {
		t.Errorf("GetByID() = %+v, %v", byID, err)
	}

	missing, _, err := repo.GetByEmail("nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("GetByEmail(missing) = %+v, %v", missing, err)
	}

	if n, err := repo.Count(); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestContactRepository(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewContactRepository(sqlDB)

	c := &models.Contact{Name: "Bob", Phone: "+200", Tags: []string{"vip", "lead", "vip"}}
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	createTestContact(t, sqlDB, "Alice")

	list, err := repo.List("")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "Alice" {
		t.Errorf("List() = %+v", list)
	}

	got, err := repo.GetByID(c.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID() = %v, %v", got, err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "lead" {
		t.Errorf("tags = %v, want [lead vip]", got.Tags)
	}

	got.Name = "Robert"
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if found, _ := repo.List("rob"); len(found) != 1 || found[0].ID != c.ID {
		t.Errorf("List(rob) = %+v", found)
	}

	ok, err := repo.Delete(c.ID)
	if err != nil || !ok {
		t.Errorf("Delete() = %v, %v", ok, err)
	}
	ok, err = repo.Delete(c.ID)
	if err != nil || ok {
		t.Errorf("second Delete() = %v, %v", ok, err)
	}
}

func TestChatRepository(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewChatRepository(sqlDB)
	contact := createTestContact(t, sqlDB, "Alice")

	chat, created, err := repo.CreateOrGet(contact.ID)
	if err != nil || !created {
		t.Fatalf("CreateOrGet() = %v, %v", created, err)
	}
	again, created, err := repo.CreateOrGet(contact.ID)
	if err != nil || created || again.ID != chat.ID {
		t.Fatalf("second CreateOrGet() = %+v, %v, %v", again, created, err)
	}
	if chat.Contact.Name != "Alice" || chat.Status != models.ChatActive || chat.LastMessage != nil {
		t.Errorf("chat = %+v", chat)
	}

	in := &models.Message{ChatID: chat.ID, SenderID: contact.ID, Text: "hi"}
	if err := repo.AddMessage(in); err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	out := &models.Message{ChatID: chat.ID, SenderID: models.SenderMe, Text: "hello"}
	if err := repo.AddMessage(out); err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	got, err := repo.GetByID(chat.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID() = %v, %v", got, err)
	}
	if got.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", got.UnreadCount)
	}
	if got.LastMessage == nil || got.LastMessage.ID != out.ID {
		t.Errorf("last message = %+v", got.LastMessage)
	}

	msgs, err := repo.ListMessages(chat.ID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != in.ID || msgs[1].ID != out.ID {
		t.Errorf("messages = %+v", msgs)
	}

	if err := repo.MarkRead(chat.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.GetByID(chat.ID); got.UnreadCount != 0 {
		t.Errorf("unread after MarkRead = %d", got.UnreadCount)
	}

	if err := repo.AddMessage(&models.Message{ChatID: "missing", SenderID: models.SenderMe, Text: "x"}); err == nil {
		t.Error("AddMessage() to a missing chat should fail")
	}

	list, err := repo.List()
	if err != nil || len(list) != 1 {
		t.Errorf("List() = %+v, %v", list, err)
	}
}

func TestChatRepositoryAdvanceOutbound(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewChatRepository(sqlDB)
	contact := createTestContact(t, sqlDB, "Alice")
	chat, _, err := repo.CreateOrGet(contact.ID)
	if err != nil {
		t.Fatal(err)
	}

	out := &models.Message{ChatID: chat.ID, SenderID: models.SenderMe, Text: "ping"}
	in := &models.Message{ChatID: chat.ID, SenderID: contact.ID, Text: "pong"}
	for _, m := range []*models.Message{out, in} {
		if err := repo.AddMessage(m); err != nil {
			t.Fatal(err)
		}
	}

	cutoff := out.Timestamp.Add(-1)
	if n, err := repo.AdvanceOutbound(models.MessageSent, models.MessageDelivered, cutoff); err != nil || n != 0 {
		t.Errorf("AdvanceOutbound(before send) = %d, %v", n, err)
	}

	cutoff = in.Timestamp.Add(1)
	n, err := repo.AdvanceOutbound(models.MessageSent, models.MessageDelivered, cutoff)
	if err != nil || n != 1 {
		t.Fatalf("AdvanceOutbound() = %d, %v; want 1", n, err)
	}

	msgs, _ := repo.ListMessages(chat.ID)
	for _, m := range msgs {
		want := models.MessageSent
		if m.ID == out.ID {
			want = models.MessageDelivered
		}
		if m.Status != want {
			t.Errorf("message %s status = %s, want %s", m.Text, m.Status, want)
		}
	}
}

func TestCampaignRepository(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewCampaignRepository(sqlDB)

	c := &models.Campaign{Name: "Launch", TotalContacts: 100, Goal: "sales"}
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Status != models.CampaignDraft {
		t.Errorf("status = %q, want draft", c.Status)
	}
	if err := repo.Create(&models.Campaign{Name: "Bad", TotalContacts: 1, SentCount: 2}); err == nil {
		t.Error("Create() should reject counters above total")
	}

	updated, err := repo.UpdateStatus(c.ID, models.CampaignScheduled)
	if err != nil || updated == nil || updated.Status != models.CampaignScheduled {
		t.Fatalf("UpdateStatus() = %+v, %v", updated, err)
	}
	if updated.ScheduledDate != nil {
		t.Errorf("scheduled date = %v, want nil", updated.ScheduledDate)
	}
	if missing, err := repo.UpdateStatus("missing", models.CampaignSent); err != nil || missing != nil {
		t.Errorf("UpdateStatus(missing) = %+v, %v", missing, err)
	}

	list, err := repo.List()
	if err != nil || len(list) != 1 || list[0].Goal != "sales" {
		t.Errorf("List() = %+v, %v", list, err)
	}

	if ok, err := repo.Delete(c.ID); err != nil || !ok {
		t.Errorf("Delete() = %v, %v", ok, err)
	}
}

func TestTemplateRepository(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewTemplateRepository(sqlDB)

	tmpl := &models.Template{
		Name:     "order_update",
		Language: "en_US",
		Category: models.CategoryUtility,
		Components: models.Components{
			models.HeaderComponent{Format: "TEXT", Text: "Order"},
			models.BodyComponent{Text: "Your order {{1}} shipped"},
			models.ButtonsComponent{Buttons: []models.Button{{Type: "QUICK_REPLY", Text: "Thanks"}}},
		},
	}
	if err := repo.Create(tmpl); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tmpl.Status != models.TemplatePending {
		t.Errorf("status = %q, want pending", tmpl.Status)
	}

	got, err := repo.GetByID(tmpl.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID() = %v, %v", got, err)
	}
	if len(got.Components) != 3 || got.Components.Body() != "Your order {{1}} shipped" {
		t.Errorf("components = %+v", got.Components)
	}
	if _, ok := got.Components[2].(models.ButtonsComponent); !ok {
		t.Errorf("component 2 = %T, want ButtonsComponent", got.Components[2])
	}

	got.Status = models.TemplateApproved
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if again, _ := repo.GetByID(tmpl.ID); again.Status != models.TemplateApproved {
		t.Errorf("status after update = %q", again.Status)
	}

	if ok, err := repo.Delete(tmpl.ID); err != nil || !ok {
		t.Errorf("Delete() = %v, %v", ok, err)
	}
	if got, err := repo.GetByID(tmpl.ID); err != nil || got != nil {
		t.Errorf("GetByID(deleted) = %+v, %v", got, err)
	}
}
