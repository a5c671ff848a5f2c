package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/wadesk/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user with a password hash. The email is stored lower-case.
func (r *UserRepository) Create(u *models.User, passwordHash string) error {
	u.ID = uuid.New().String()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleAgent
	}
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO users (id, email, password_hash, name, avatar, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, passwordHash, u.Name, u.Avatar, u.Role, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRow(`
		SELECT id, name, email, avatar, role FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Role)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail returns a user and its password hash
func (r *UserRepository) GetByEmail(email string) (*models.User, string, error) {
	u := &models.User{}
	var hash string
	err := r.db.QueryRow(`
		SELECT id, name, email, avatar, role, password_hash FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Role, &hash)

	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return u, hash, nil
}

// UpdateProfile changes name and avatar
func (r *UserRepository) UpdateProfile(u *models.User) error {
	_, err := r.db.Exec(`
		UPDATE users SET name = ?, avatar = ?, updated_at = ? WHERE id = ?`,
		u.Name, u.Avatar, time.Now().UTC(), u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	_, err := r.db.Exec(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	return err
}

// Count returns the number of users
func (r *UserRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
