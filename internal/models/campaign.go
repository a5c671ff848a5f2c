package models

import (
	"fmt"
	"time"
)

// CampaignStatus is the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSending   CampaignStatus = "sending"
	CampaignSent      CampaignStatus = "sent"
	CampaignCompleted CampaignStatus = "completed"
	CampaignFailed    CampaignStatus = "failed"
)

// Valid reports whether s is a known campaign status
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignSending, CampaignSent, CampaignCompleted, CampaignFailed:
		return true
	}
	return false
}

// Campaign is a broadcast of one template to a set of contacts
type Campaign struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Status         CampaignStatus `json:"status"`
	SentCount      int            `json:"sentCount"`
	DeliveredCount int            `json:"deliveredCount"`
	ReadCount      int            `json:"readCount"`
	TotalContacts  int            `json:"totalContacts"`
	CreatedAt      time.Time      `json:"createdAt"`
	TemplateID     string         `json:"templateId,omitempty"`
	TemplateName   string         `json:"templateName,omitempty"`
	Goal           string         `json:"goal,omitempty"`
	ScheduledDate  *time.Time     `json:"scheduledDate,omitempty"`
}

// CheckCounters verifies read <= delivered <= sent <= total
func (c *Campaign) CheckCounters() error {
	if c.ReadCount < 0 || c.ReadCount > c.DeliveredCount {
		return fmt.Errorf("read count %d exceeds delivered count %d", c.ReadCount, c.DeliveredCount)
	}
	if c.DeliveredCount > c.SentCount {
		return fmt.Errorf("delivered count %d exceeds sent count %d", c.DeliveredCount, c.SentCount)
	}
	if c.SentCount > c.TotalContacts {
		return fmt.Errorf("sent count %d exceeds total contacts %d", c.SentCount, c.TotalContacts)
	}
	return nil
}

// CampaignRequest is the payload used to create a campaign
type CampaignRequest struct {
	Name          string         `json:"name"`
	Status        CampaignStatus `json:"status,omitempty"`
	TotalContacts int            `json:"totalContacts"`
	TemplateID    string         `json:"templateId,omitempty"`
	TemplateName  string         `json:"templateName,omitempty"`
	Goal          string         `json:"goal,omitempty"`
	ScheduledDate *time.Time     `json:"scheduledDate,omitempty"`
}

// CopyRequest builds the payload for a duplicate of c: identity, timestamps and
// counters are dropped, the status is reset to draft.
func (c *Campaign) CopyRequest() CampaignRequest {
	req := CampaignRequest{
		Name:          c.Name + " (Copy)",
		Status:        CampaignDraft,
		TotalContacts: c.TotalContacts,
		TemplateID:    c.TemplateID,
		TemplateName:  c.TemplateName,
		Goal:          c.Goal,
	}
	if c.ScheduledDate != nil {
		d := *c.ScheduledDate
		req.ScheduledDate = &d
	}
	return req
}

// StatusUpdate is the body of PUT /campaigns/{id}/status
type StatusUpdate struct {
	Status CampaignStatus `json:"status"`
}
