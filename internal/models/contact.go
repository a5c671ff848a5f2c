package models

import (
	"slices"
	"time"
)

// Contact is a CRM contact
type Contact struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Tags       []string  `json:"tags"`
	LastActive time.Time `json:"lastActive"`
	Email      string    `json:"email,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
}

// ContactPatch is a partial contact used for create and update.
// Nil fields are left unchanged.
type ContactPatch struct {
	Name   *string  `json:"name,omitempty"`
	Phone  *string  `json:"phone,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Email  *string  `json:"email,omitempty"`
	Avatar *string  `json:"avatar,omitempty"`
}

// Apply merges the patch into c
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Tags != nil {
		c.Tags = NormalizeTags(p.Tags)
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Avatar != nil {
		c.Avatar = *p.Avatar
	}
}

// NormalizeTags returns tags as a sorted set without empty entries
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
