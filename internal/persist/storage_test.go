package persist

import (
	"path/filepath"
	"testing"
)

type authState struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func openTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorageSaveLoad(t *testing.T) {
	s := openTestStorage(t)

	if err := s.Save(PartitionAuth, authState{Token: "tok", Email: "a@example.com"}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	var got authState
	found, err := s.Load(PartitionAuth, &got)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if !found {
		t.Fatal("expected stored state")
	}
	if got.Token != "tok" || got.Email != "a@example.com" {
		t.Errorf("unexpected state %+v", got)
	}
}

func TestStoragePartitionsIndependent(t *testing.T) {
	s := openTestStorage(t)

	if err := s.Save(PartitionChats, []string{"chat-1"}); err != nil {
		t.Fatalf("failed to save chats: %v", err)
	}
	if err := s.Save(PartitionCampaigns, []string{"camp-1", "camp-2"}); err != nil {
		t.Fatalf("failed to save campaigns: %v", err)
	}

	if err := s.Clear(PartitionChats); err != nil {
		t.Fatalf("failed to clear chats: %v", err)
	}

	var chats []string
	found, err := s.Load(PartitionChats, &chats)
	if err != nil {
		t.Fatalf("failed to load chats: %v", err)
	}
	if found {
		t.Error("chats partition should be empty after clear")
	}

	var campaigns []string
	found, err = s.Load(PartitionCampaigns, &campaigns)
	if err != nil {
		t.Fatalf("failed to load campaigns: %v", err)
	}
	if !found || len(campaigns) != 2 {
		t.Errorf("campaigns partition should be untouched, got %v", campaigns)
	}

	sizes, err := s.Size()
	if err != nil {
		t.Fatalf("failed to get sizes: %v", err)
	}
	if sizes[PartitionChats] != 0 || sizes[PartitionCampaigns] == 0 {
		t.Errorf("unexpected sizes %v", sizes)
	}
}

func TestStorageUnknownPartition(t *testing.T) {
	s := openTestStorage(t)

	if err := s.Save(Partition("settings"), 1); err == nil {
		t.Error("expected error for unknown partition")
	}
}

func TestStorageReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	if err := s.Save(PartitionTemplates, map[string]int{"welcome": 1}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("failed to reopen storage: %v", err)
	}
	defer s.Close()

	var got map[string]int
	if found, err := s.Load(PartitionTemplates, &got); err != nil || !found {
		t.Fatalf("expected persisted templates, found=%v err=%v", found, err)
	}
	if got["welcome"] != 1 {
		t.Errorf("unexpected templates %v", got)
	}
}
