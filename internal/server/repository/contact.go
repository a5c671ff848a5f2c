package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/wadesk/internal/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = "id, name, phone, email, avatar, tags, last_active"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	c := &models.Contact{}
	var tags string
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Avatar, &tags, &c.LastActive); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of contact %s: %w", c.ID, err)
	}
	return c, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(models.NormalizeTags(tags))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List returns contacts ordered by name. A non-empty search matches name
// or phone.
func (r *ContactRepository) List(search string) ([]models.Contact, error) {
	query := "SELECT " + contactColumns + " FROM contacts"
	args := []any{}
	if search != "" {
		query += " WHERE name LIKE ? OR phone LIKE ?"
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// GetByID returns a contact by ID
func (r *ContactRepository) GetByID(id string) (*models.Contact, error) {
	c, err := scanContact(r.db.QueryRow("SELECT "+contactColumns+" FROM contacts WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a contact
func (r *ContactRepository) Create(c *models.Contact) error {
	c.ID = uuid.New().String()
	if c.LastActive.IsZero() {
		c.LastActive = time.Now()
	}
	c.LastActive = c.LastActive.UTC()
	c.Tags = models.NormalizeTags(c.Tags)

	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO contacts (id, name, phone, email, avatar, tags, last_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Phone, c.Email, c.Avatar, tags, c.LastActive, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// Update saves every field of a contact
func (r *ContactRepository) Update(c *models.Contact) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		UPDATE contacts SET name = ?, phone = ?, email = ?, avatar = ?, tags = ?, last_active = ?
		WHERE id = ?`,
		c.Name, c.Phone, c.Email, c.Avatar, tags, c.LastActive.UTC(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// Delete deletes a contact and reports whether it existed
func (r *ContactRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM contacts WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
