package store

import (
	"context"
	"errors"
	"testing"

	"github.com/foxzi/wadesk/internal/models"
)

func strPtr(s string) *string { return &s }

func TestContactsCRUD(t *testing.T) {
	api := newFakeAPI()
	api.contacts = []models.Contact{{ID: "c-a", Name: "Alice", Phone: "+100"}}
	c := NewContacts(api, testLogger())
	ctx := context.Background()

	if err := c.Fetch(ctx); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := len(c.List()); got != 1 {
		t.Fatalf("contacts = %d, want 1", got)
	}

	added, err := c.Add(ctx, models.ContactPatch{Name: strPtr("Bob"), Phone: strPtr("+200"), Tags: []string{"vip", "vip", ""}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got, ok := c.Get(added.ID); !ok || got.Name != "Bob" || len(got.Tags) != 1 {
		t.Errorf("added contact = %+v (%v)", got, ok)
	}

	if _, err := c.Update(ctx, "c-a", models.ContactPatch{Name: strPtr("Alice B")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := c.Get("c-a"); got.Name != "Alice B" || got.Phone != "+100" {
		t.Errorf("updated contact = %+v", got)
	}

	if err := c.Delete(ctx, "c-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get("c-a"); ok {
		t.Error("deleted contact still cached")
	}
}

func TestContactsErrorsKeepCache(t *testing.T) {
	api := newFakeAPI()
	api.contacts = []models.Contact{{ID: "c-a", Name: "Alice"}, {ID: "c-b", Name: "Bob"}, {ID: "c-c", Name: "Carol"}}
	c := NewContacts(api, testLogger())
	ctx := context.Background()
	if err := c.Fetch(ctx); err != nil {
		t.Fatal(err)
	}

	api.contactErr["c-b"] = errBackend
	err := c.DeleteMany(ctx, []string{"c-a", "c-b", "c-c"})
	if !errors.Is(err, errBackend) {
		t.Fatalf("DeleteMany error = %v, want errBackend", err)
	}
	list := c.List()
	if len(list) != 1 || list[0].ID != "c-b" {
		t.Errorf("remaining contacts = %+v, want only c-b", list)
	}

	if _, err := c.Update(ctx, "c-b", models.ContactPatch{Name: strPtr("X")}); err == nil {
		t.Fatal("expected update error")
	}
	if got, _ := c.Get("c-b"); got.Name != "Bob" {
		t.Errorf("failed update changed cache: %+v", got)
	}

	api.contactErr["list"] = errBackend
	if err := c.Fetch(ctx); err == nil {
		t.Fatal("expected fetch error")
	}
	if len(c.List()) != 1 {
		t.Error("failed fetch should keep the cache")
	}
	if c.Loading() {
		t.Error("loading should be reset after a failed fetch")
	}
}
