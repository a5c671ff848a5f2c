package models

import (
	"testing"
	"time"
)

func TestCampaignCopyRequest(t *testing.T) {
	scheduled := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := &Campaign{
		ID:             "c-1",
		Name:           "Spring sale",
		Status:         CampaignCompleted,
		SentCount:      10,
		DeliveredCount: 9,
		ReadCount:      4,
		TotalContacts:  10,
		CreatedAt:      time.Now(),
		TemplateID:     "t-1",
		TemplateName:   "spring_offer",
		Goal:           "sales",
		ScheduledDate:  &scheduled,
	}

	req := c.CopyRequest()

	if req.Name != "Spring sale (Copy)" {
		t.Errorf("unexpected name %q", req.Name)
	}
	if req.Status != CampaignDraft {
		t.Errorf("expected draft status, got %s", req.Status)
	}
	if req.TotalContacts != 10 || req.TemplateID != "t-1" || req.Goal != "sales" {
		t.Errorf("fields not preserved: %+v", req)
	}
	if req.ScheduledDate == c.ScheduledDate {
		t.Error("scheduled date should be copied, not shared")
	}
}

func TestCampaignCheckCounters(t *testing.T) {
	tests := []struct {
		name    string
		c       Campaign
		wantErr bool
	}{
		{"zero", Campaign{}, false},
		{"ordered", Campaign{ReadCount: 1, DeliveredCount: 2, SentCount: 3, TotalContacts: 3}, false},
		{"read above delivered", Campaign{ReadCount: 3, DeliveredCount: 2, SentCount: 3, TotalContacts: 3}, true},
		{"delivered above sent", Campaign{DeliveredCount: 4, SentCount: 3, TotalContacts: 5}, true},
		{"sent above total", Campaign{SentCount: 6, TotalContacts: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.CheckCounters()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckCounters() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCampaignStatusValid(t *testing.T) {
	if !CampaignSending.Valid() {
		t.Error("sending should be valid")
	}
	if CampaignStatus("paused").Valid() {
		t.Error("paused should not be valid")
	}
}
