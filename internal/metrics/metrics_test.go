package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	m := New()
	if m.Registry() == nil {
		t.Fatal("Registry() returned nil")
	}

	m.MessageSent("text")
	m.MessageSent("text")
	m.MessageSent("image")
	m.MessageStatus("delivered")
	m.LoginFailed()
	m.CampaignCreated()

	if got := testutil.ToFloat64(m.MessagesSentTotal.WithLabelValues("text")); got != 2 {
		t.Errorf("messages sent (text) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.MessageStatusTotal.WithLabelValues("delivered")); got != 1 {
		t.Errorf("status transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LoginFailuresTotal); got != 1 {
		t.Errorf("login failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CampaignsCreatedTotal); got != 1 {
		t.Errorf("campaigns created = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// recording on nil metrics is a no-op
	m.MessageSent("text")
	m.LoginFailed()

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.LoginFailed()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "wadesk_login_failures_total 1") {
		t.Errorf("exposition missing login failures:\n%s", body)
	}
}
