package main

import (
	"testing"
	"time"

	"github.com/foxzi/wadesk/internal/models"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"version"}, "version"},
		{[]string{"login"}, "login"},
		{[]string{"chats", "send"}, "chats"},
		{[]string{"templates", "filter"}, "templates"},
		{[]string{"state", "info"}, "state"},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find(tt.args)
		if err != nil {
			t.Fatalf("Find(%v): %v", tt.args, err)
		}
		if got := route(cmd); got != tt.want {
			t.Errorf("route(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}

	if got := route(rootCmd); got != "" {
		t.Errorf("route(root) = %q, want empty", got)
	}
}

func TestParseSchedule(t *testing.T) {
	if got, err := parseSchedule(""); err != nil || got != nil {
		t.Errorf("parseSchedule(\"\") = %v, %v", got, err)
	}

	got, err := parseSchedule("2026-03-01T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}

	got, err = parseSchedule("2026-03-01 10:00")
	if err != nil {
		t.Fatal(err)
	}
	if got.Hour() != 10 || got.Location() != time.Local {
		t.Errorf("got %v", got)
	}

	if _, err := parseSchedule("tomorrow"); err == nil {
		t.Error("expected error for unparseable schedule")
	}
}

func TestMatchContact(t *testing.T) {
	c := models.Contact{Name: "Maria Garcia", Phone: "+34600111222", Tags: []string{"vip", "spain"}}

	for _, q := range []string{"maria", "GARCIA", "600111", "VIP"} {
		if !matchContact(c, q) {
			t.Errorf("matchContact(%q) = false", q)
		}
	}
	if matchContact(c, "john") {
		t.Error("matchContact(john) = true")
	}
}

func TestPercent(t *testing.T) {
	if got := percent(0, 0); got != 0 {
		t.Errorf("percent(0, 0) = %v", got)
	}
	if got := percent(1, 4); got != 25 {
		t.Errorf("percent(1, 4) = %v", got)
	}
}
