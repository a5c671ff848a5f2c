package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foxzi/wadesk/internal/client"
	"github.com/foxzi/wadesk/internal/models"
)

func TestSessionLogin(t *testing.T) {
	api := newFakeAPI()
	path := tempStatePath(t)
	mirror := openMirror(t, path)
	s := NewSession(api, mirror, testLogger())

	if s.CheckAuth() {
		t.Fatal("new session should not be authenticated")
	}

	res, err := s.Login(context.Background(), "agent@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok-1" {
		t.Errorf("token = %q, want tok-1", res.Token)
	}
	if !s.CheckAuth() || s.Token() != "tok-1" {
		t.Error("session should be authenticated after login")
	}
	if s.Loading() {
		t.Error("loading should be false after login")
	}

	// a fresh session over the same state sees the login
	restored := NewSession(api, mirror, testLogger())
	if err := restored.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	u, ok := restored.User()
	if !ok || u.Email != "agent@example.com" || restored.Token() != "tok-1" {
		t.Errorf("restored user = %+v (%v), token %q", u, ok, restored.Token())
	}
}

func TestSessionLoginFailure(t *testing.T) {
	api := newFakeAPI()
	api.loginErr = errBackend
	s := NewSession(api, nil, testLogger())

	if _, err := s.Login(context.Background(), "agent@example.com", "bad"); !errors.Is(err, errBackend) {
		t.Fatalf("Login error = %v, want errBackend", err)
	}
	if s.CheckAuth() {
		t.Error("session should not be authenticated")
	}
	if s.Err() == nil {
		t.Error("Err should report the failure")
	}

	if _, err := s.Login(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty credentials")
	}
}

func TestSessionLogout(t *testing.T) {
	api := newFakeAPI()
	mirror := openMirror(t, tempStatePath(t))
	s := NewSession(api, mirror, testLogger())

	if _, err := s.Register(context.Background(), "New", "new@example.com", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	u, _ := s.User()
	if u.Name != "New" {
		t.Errorf("user name = %q, want New", u.Name)
	}

	s.Logout()
	if s.CheckAuth() {
		t.Error("session should be cleared")
	}

	restored := NewSession(api, mirror, testLogger())
	if err := restored.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.CheckAuth() {
		t.Error("logout should clear the persisted session")
	}
}

func TestSessionUpdateProfile(t *testing.T) {
	api := newFakeAPI()
	s := NewSession(api, nil, testLogger())
	if _, err := s.Login(context.Background(), "agent@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	name := "Renamed"
	if _, err := s.UpdateProfile(context.Background(), models.ProfileUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	u, _ := s.User()
	if u.Name != "Renamed" {
		t.Errorf("user name = %q, want Renamed", u.Name)
	}
}

func TestGuard(t *testing.T) {
	s := NewSession(newFakeAPI(), nil, testLogger())
	g := NewGuard(s, RouteLogin, PublicRoutes...)

	tests := []struct {
		route string
		allow bool
	}{
		{RouteLogin, true},
		{RouteRegister, true},
		{"version", true},
		{"chats", false},
		{"campaigns", false},
	}
	for _, tt := range tests {
		d := g.Check(tt.route)
		if d.Allow != tt.allow {
			t.Errorf("Check(%q).Allow = %v, want %v", tt.route, d.Allow, tt.allow)
		}
		if !d.Allow && d.Redirect != RouteLogin {
			t.Errorf("Check(%q).Redirect = %q, want %q", tt.route, d.Redirect, RouteLogin)
		}
		// following the redirect must not redirect again
		if !d.Allow && !g.Check(d.Redirect).Allow {
			t.Errorf("redirect target %q is not allowed", d.Redirect)
		}
	}

	if _, err := s.Login(context.Background(), "agent@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	if !g.Check("chats").Allow {
		t.Error("authenticated user should be allowed")
	}
}

func TestAppUnauthorizedClearsSession(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"user":{"id":"u1","name":"Agent","email":"a@example.com","role":"agent"},"token":"stale"}`))
		default:
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"token expired"}`))
		}
	}))
	defer srv.Close()

	app := NewApp(AppConfig{
		Client: client.New(srv.URL),
		Mirror: openMirror(t, tempStatePath(t)),
		Logger: testLogger(),
	})
	defer app.Close()

	if _, err := app.Session.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	err := app.Contacts.Fetch(context.Background())
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("Fetch error = %v, want ErrUnauthorized", err)
	}
	if gotAuth != "Bearer stale" {
		t.Errorf("Authorization = %q, want Bearer stale", gotAuth)
	}
	if app.Session.CheckAuth() {
		t.Error("401 should clear the session")
	}
	if d := app.Guard.Check("contacts"); d.Allow || d.Redirect != RouteLogin {
		t.Errorf("guard decision after 401 = %+v", d)
	}
}
