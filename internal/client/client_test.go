package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foxzi/wadesk/internal/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8080", "http://localhost:8080/api"},
		{"http://localhost:8080/", "http://localhost:8080/api"},
		{"http://localhost:8080/api", "http://localhost:8080/api"},
		{"http://localhost:8080/api/", "http://localhost:8080/api"},
		{"http://localhost:8080//api//", "http://localhost:8080/api"},
		{"http://localhost:8080/api/api", "http://localhost:8080/api"},
		{"  https://dash.example.com/v1  ", "https://dash.example.com/v1/api"},
		{"", "/api"},
		{"/api", "/api"},
		{"HTTP://Example.com/", "http://Example.com/api"},
		{"http://user:pw@host:8080//v1//", "http://user:pw@host:8080/v1/api"},
		{"http://host/api?x=1", "http://host/api"},
		{"http://host/v1/?x=1#top", "http://host/v1/api"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeBaseURL(tt.in); got != tt.want {
				t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClientBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.Contact{{ID: "c1", Name: "Ana"}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("tok-1")))
	contacts, err := c.ListContacts(context.Background())
	if err != nil {
		t.Fatalf("ListContacts() error = %v", err)
	}

	if gotAuth != "Bearer tok-1" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotPath != "/api/contacts/" {
		t.Errorf("expected path /api/contacts/, got %q", gotPath)
	}
	if len(contacts) != 1 || contacts[0].Name != "Ana" {
		t.Errorf("unexpected contacts %+v", contacts)
	}
}

func TestClientNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.AuthResult{Token: "t"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("")))
	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestClientUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "token expired"})
	}))
	defer srv.Close()

	called := 0
	c := New(srv.URL, WithTokenSource(staticToken("old")), WithUnauthorizedHandler(func() { called++ }))

	_, err := c.ListChats(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if called != 1 {
		t.Errorf("expected unauthorized handler to be called once, got %d", called)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "token expired" {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Contact not found"})
	}))
	defer srv.Close()

	called := false
	c := New(srv.URL, WithUnauthorizedHandler(func() { called = true }))

	err := c.DeleteContact(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apiErr.StatusCode)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("404 must not match ErrUnauthorized")
	}
	if called {
		t.Error("unauthorized handler must not run for 404")
	}
}

func TestClientSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chats/chat-1/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req models.SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Message{
			ID: "srv-1", ChatID: "chat-1", SenderID: models.SenderMe,
			Text: req.Text, Type: req.Type, Status: models.MessageSent,
		})
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	msg, err := c.SendMessage(context.Background(), "chat-1", models.SendMessageRequest{Text: "hello", Type: models.MessageText})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if msg.ID != "srv-1" || msg.Text != "hello" {
		t.Errorf("unexpected message %+v", msg)
	}
}
