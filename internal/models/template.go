package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TemplateCategory classifies a message template
type TemplateCategory string

const (
	CategoryMarketing      TemplateCategory = "MARKETING"
	CategoryUtility        TemplateCategory = "UTILITY"
	CategoryAuthentication TemplateCategory = "AUTHENTICATION"
)

// Valid reports whether c is a known category
func (c TemplateCategory) Valid() bool {
	switch c {
	case CategoryMarketing, CategoryUtility, CategoryAuthentication:
		return true
	}
	return false
}

// TemplateStatus is the approval state of a template
type TemplateStatus string

const (
	TemplateApproved TemplateStatus = "approved"
	TemplatePending  TemplateStatus = "pending"
	TemplateRejected TemplateStatus = "rejected"
)

// Component kinds
const (
	ComponentHeader  = "HEADER"
	ComponentBody    = "BODY"
	ComponentFooter  = "FOOTER"
	ComponentButtons = "BUTTONS"
)

// Component is one part of a template. The concrete types are
// HeaderComponent, BodyComponent, FooterComponent and ButtonsComponent.
type Component interface {
	Kind() string
}

// HeaderComponent is the optional template header
type HeaderComponent struct {
	Format string `json:"format"` // TEXT, IMAGE, VIDEO, DOCUMENT
	Text   string `json:"text,omitempty"`
}

// BodyComponent is the template body with {{n}} placeholders
type BodyComponent struct {
	Text string `json:"text"`
}

// FooterComponent is the optional template footer
type FooterComponent struct {
	Text string `json:"text"`
}

// Button is a single template button
type Button struct {
	Type        string `json:"type"` // QUICK_REPLY, URL, PHONE_NUMBER
	Text        string `json:"text"`
	URL         string `json:"url,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// ButtonsComponent holds the template buttons
type ButtonsComponent struct {
	Buttons []Button `json:"buttons"`
}

func (HeaderComponent) Kind() string  { return ComponentHeader }
func (BodyComponent) Kind() string    { return ComponentBody }
func (FooterComponent) Kind() string  { return ComponentFooter }
func (ButtonsComponent) Kind() string { return ComponentButtons }

// Components is an ordered list of template components encoded as a tagged union
type Components []Component

// MarshalJSON writes each component with a "type" discriminator
func (cs Components) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(cs))
	for _, c := range cs {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
		kind, _ := json.Marshal(c.Kind())
		fields["type"] = kind
		data, err = json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes components by their "type" discriminator
func (cs *Components) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Components, 0, len(raw))
	for i, r := range raw {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(r, &head); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
		var (
			c   Component
			err error
		)
		switch strings.ToUpper(head.Type) {
		case ComponentHeader:
			var h HeaderComponent
			err = json.Unmarshal(r, &h)
			c = h
		case ComponentBody:
			var b BodyComponent
			err = json.Unmarshal(r, &b)
			c = b
		case ComponentFooter:
			var f FooterComponent
			err = json.Unmarshal(r, &f)
			c = f
		case ComponentButtons:
			var b ButtonsComponent
			err = json.Unmarshal(r, &b)
			c = b
		default:
			return fmt.Errorf("component %d: unknown type %q", i, head.Type)
		}
		if err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}

// Body returns the text of the first BODY component
func (cs Components) Body() string {
	for _, c := range cs {
		if b, ok := c.(BodyComponent); ok {
			return b.Text
		}
	}
	return ""
}

// Template is a WhatsApp message template
type Template struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Language    string           `json:"language"`
	Category    TemplateCategory `json:"category"`
	Status      TemplateStatus   `json:"status"`
	Components  Components       `json:"components"`
	LastUpdated time.Time        `json:"lastUpdated"`
	UsageCount  int              `json:"usageCount"`
}

// TemplatePatch is a partial template used for create and update
type TemplatePatch struct {
	Name       *string           `json:"name,omitempty"`
	Language   *string           `json:"language,omitempty"`
	Category   *TemplateCategory `json:"category,omitempty"`
	Components Components        `json:"components,omitempty"`
}

// Apply merges the patch into t
func (p TemplatePatch) Apply(t *Template) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Language != nil {
		t.Language = *p.Language
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Components != nil {
		t.Components = p.Components
	}
}
