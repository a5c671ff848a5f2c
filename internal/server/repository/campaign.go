package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/wadesk/internal/models"
)

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, name, status, sent_count, delivered_count, read_count, total_contacts,
	template_id, template_name, goal, scheduled_date, created_at`

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	c := &models.Campaign{}
	var scheduled sql.NullTime
	err := row.Scan(
		&c.ID, &c.Name, &c.Status, &c.SentCount, &c.DeliveredCount, &c.ReadCount, &c.TotalContacts,
		&c.TemplateID, &c.TemplateName, &c.Goal, &scheduled, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if scheduled.Valid {
		t := scheduled.Time
		c.ScheduledDate = &t
	}
	return c, nil
}

// List returns campaigns, newest first
func (r *CampaignRepository) List() ([]models.Campaign, error) {
	rows, err := r.db.Query("SELECT " + campaignColumns + " FROM campaigns ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// GetByID returns a campaign by ID
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRow("SELECT "+campaignColumns+" FROM campaigns WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a campaign
func (r *CampaignRepository) Create(c *models.Campaign) error {
	if err := c.CheckCounters(); err != nil {
		return err
	}
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	if c.Status == "" {
		c.Status = models.CampaignDraft
	}

	var scheduled any
	if c.ScheduledDate != nil {
		scheduled = c.ScheduledDate.UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO campaigns (id, name, status, sent_count, delivered_count, read_count, total_contacts,
			template_id, template_name, goal, scheduled_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Status, c.SentCount, c.DeliveredCount, c.ReadCount, c.TotalContacts,
		c.TemplateID, c.TemplateName, c.Goal, scheduled, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// UpdateStatus sets a campaign's status and returns the updated campaign,
// or nil when it does not exist
func (r *CampaignRepository) UpdateStatus(id string, status models.CampaignStatus) (*models.Campaign, error) {
	res, err := r.db.Exec("UPDATE campaigns SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

// Delete deletes a campaign and reports whether it existed
func (r *CampaignRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM campaigns WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
