package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/wadesk/internal/models"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateColumns = "id, name, language, category, status, components, usage_count, last_updated"

func scanTemplate(row rowScanner) (*models.Template, error) {
	t := &models.Template{}
	var components string
	err := row.Scan(&t.ID, &t.Name, &t.Language, &t.Category, &t.Status, &components, &t.UsageCount, &t.LastUpdated)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(components), &t.Components); err != nil {
		return nil, fmt.Errorf("decode components of template %s: %w", t.ID, err)
	}
	return t, nil
}

func encodeComponents(cs models.Components) (string, error) {
	if cs == nil {
		cs = models.Components{}
	}
	data, err := json.Marshal(cs)
	if err != nil {
		return "", fmt.Errorf("encode components: %w", err)
	}
	return string(data), nil
}

// List returns templates, most recently updated first
func (r *TemplateRepository) List() ([]models.Template, error) {
	rows, err := r.db.Query("SELECT " + templateColumns + " FROM templates ORDER BY last_updated DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// GetByID returns a template by ID
func (r *TemplateRepository) GetByID(id string) (*models.Template, error) {
	t, err := scanTemplate(r.db.QueryRow("SELECT "+templateColumns+" FROM templates WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a template with a fresh ID
func (r *TemplateRepository) Create(t *models.Template) error {
	t.ID = uuid.New().String()
	t.LastUpdated = time.Now().UTC()
	if t.Status == "" {
		t.Status = models.TemplatePending
	}
	if t.Components == nil {
		t.Components = models.Components{}
	}

	components, err := encodeComponents(t.Components)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO templates (id, name, language, category, status, components, usage_count, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Language, t.Category, t.Status, components, t.UsageCount, t.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// Update saves a template and refreshes its last update time
func (r *TemplateRepository) Update(t *models.Template) error {
	t.LastUpdated = time.Now().UTC()

	components, err := encodeComponents(t.Components)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		UPDATE templates SET name = ?, language = ?, category = ?, status = ?, components = ?, usage_count = ?, last_updated = ?
		WHERE id = ?`,
		t.Name, t.Language, t.Category, t.Status, components, t.UsageCount, t.LastUpdated, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

// Delete deletes a template and reports whether it existed
func (r *TemplateRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
