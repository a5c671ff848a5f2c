package server

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/server/repository"
)

// SeedResult counts the rows created by Seed
type SeedResult struct {
	Contacts  int
	Chats     int
	Messages  int
	Campaigns int
	Templates int
}

type seedContact struct {
	name, phone, email string
	tags               []string
	chat               []string // alternating contact and agent lines, contact first
}

var demoContacts = []seedContact{
	{
		name: "Sarah Jenkins", phone: "+1 555-0101", email: "sarah@example.com", tags: []string{"vip", "customer"},
		chat: []string{"Hi! Is my order shipped yet?", "Hello Sarah, it left the warehouse this morning.", "Great, thank you!"},
	},
	{
		name: "Michael Chen", phone: "+1 555-0102", email: "m.chen@example.com", tags: []string{"lead"},
		chat: []string{"Do you offer bulk pricing?", "We do. How many units are you planning?"},
	},
	{
		name: "Emma Rodriguez", phone: "+1 555-0103", tags: []string{"customer"},
		chat: []string{"The link in your last message does not open."},
	},
	{name: "David Kim", phone: "+1 555-0104", email: "dkim@example.com", tags: []string{"lead", "newsletter"}},
	{name: "Olivia Brown", phone: "+1 555-0105", tags: []string{"newsletter"}},
}

var demoTemplates = []models.Template{
	{
		Name: "order_shipped", Language: "en_US", Category: models.CategoryUtility, Status: models.TemplateApproved, UsageCount: 1240,
		Components: models.Components{
			models.HeaderComponent{Format: "TEXT", Text: "Your order is on its way"},
			models.BodyComponent{Text: "Hi {{1}}, order {{2}} has shipped and will arrive on {{3}}."},
			models.FooterComponent{Text: "Reply STOP to opt out"},
			models.ButtonsComponent{Buttons: []models.Button{{Type: "URL", Text: "Track order", URL: "https://example.com/track"}}},
		},
	},
	{
		Name: "summer_sale", Language: "en_US", Category: models.CategoryMarketing, Status: models.TemplateApproved, UsageCount: 530,
		Components: models.Components{
			models.HeaderComponent{Format: "IMAGE"},
			models.BodyComponent{Text: "Summer sale! Take {{1}}% off everything until Sunday."},
			models.ButtonsComponent{Buttons: []models.Button{{Type: "QUICK_REPLY", Text: "Shop now"}, {Type: "QUICK_REPLY", Text: "Not interested"}}},
		},
	},
	{
		Name: "login_code", Language: "en_US", Category: models.CategoryAuthentication, Status: models.TemplatePending,
		Components: models.Components{
			models.BodyComponent{Text: "{{1}} is your verification code."},
		},
	},
}

// Seed loads demo contacts, chats, messages, templates and campaigns
func Seed(db *sql.DB) (*SeedResult, error) {
	res := &SeedResult{}
	contacts := repository.NewContactRepository(db)
	chats := repository.NewChatRepository(db)
	campaigns := repository.NewCampaignRepository(db)
	templates := repository.NewTemplateRepository(db)

	now := time.Now().UTC()

	for i, sc := range demoContacts {
		c := &models.Contact{
			Name:       sc.name,
			Phone:      sc.phone,
			Email:      sc.email,
			Tags:       sc.tags,
			LastActive: now.Add(-time.Duration(i) * time.Hour),
		}
		if err := contacts.Create(c); err != nil {
			return res, fmt.Errorf("seed contact %s: %w", sc.name, err)
		}
		res.Contacts++

		if len(sc.chat) == 0 {
			continue
		}
		chat, _, err := chats.CreateOrGet(c.ID)
		if err != nil {
			return res, fmt.Errorf("seed chat %s: %w", sc.name, err)
		}
		res.Chats++

		start := now.Add(-time.Duration(len(sc.chat)+i) * time.Minute)
		for j, text := range sc.chat {
			m := &models.Message{
				ChatID:    chat.ID,
				SenderID:  c.ID,
				Text:      text,
				Type:      models.MessageText,
				Status:    models.MessageRead,
				Timestamp: start.Add(time.Duration(j) * time.Minute),
			}
			if j%2 == 1 {
				m.SenderID = models.SenderMe
			}
			if err := chats.AddMessage(m); err != nil {
				return res, fmt.Errorf("seed message: %w", err)
			}
			res.Messages++
		}
	}

	var shipped *models.Template
	for i := range demoTemplates {
		t := demoTemplates[i]
		if err := templates.Create(&t); err != nil {
			return res, fmt.Errorf("seed template %s: %w", t.Name, err)
		}
		if t.Name == "order_shipped" {
			shipped = &t
		}
		res.Templates++
	}

	next := now.Add(72 * time.Hour)
	demoCampaigns := []models.Campaign{
		{Name: "Spring Launch", Status: models.CampaignCompleted, SentCount: 1200, DeliveredCount: 1150, ReadCount: 890, TotalContacts: 1200, Goal: "sales"},
		{Name: "Weekly Newsletter", Status: models.CampaignScheduled, TotalContacts: 450, Goal: "engagement", ScheduledDate: &next},
		{Name: "Abandoned Cart", Status: models.CampaignDraft, TotalContacts: 80, Goal: "recovery"},
	}
	for i := range demoCampaigns {
		c := demoCampaigns[i]
		if shipped != nil && i == 0 {
			c.TemplateID, c.TemplateName = shipped.ID, shipped.Name
		}
		if err := campaigns.Create(&c); err != nil {
			return res, fmt.Errorf("seed campaign %s: %w", c.Name, err)
		}
		res.Campaigns++
	}

	return res, nil
}
