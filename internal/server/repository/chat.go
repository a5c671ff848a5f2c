package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/wadesk/internal/models"
)

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

const chatQuery = `
	SELECT ch.id, ch.contact_id, ch.unread_count, ch.status,
		c.id, c.name, c.phone, c.email, c.avatar, c.tags, c.last_active,
		m.id, m.sender_id, m.text, m.type, m.media_url, m.status, m.timestamp
	FROM chats ch
	JOIN contacts c ON c.id = ch.contact_id
	LEFT JOIN messages m ON m.id = ch.last_message_id`

func scanChat(row rowScanner) (*models.ChatSession, error) {
	ch := &models.ChatSession{}
	var (
		tags string
		last struct {
			ID, SenderID, Text, Type, MediaURL, Status sql.NullString
			Timestamp                                  sql.NullTime
		}
	)
	err := row.Scan(
		&ch.ID, &ch.ContactID, &ch.UnreadCount, &ch.Status,
		&ch.Contact.ID, &ch.Contact.Name, &ch.Contact.Phone, &ch.Contact.Email, &ch.Contact.Avatar, &tags, &ch.Contact.LastActive,
		&last.ID, &last.SenderID, &last.Text, &last.Type, &last.MediaURL, &last.Status, &last.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &ch.Contact.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of contact %s: %w", ch.ContactID, err)
	}
	if last.ID.Valid {
		ch.LastMessage = &models.Message{
			ID:        last.ID.String,
			ChatID:    ch.ID,
			SenderID:  last.SenderID.String,
			Text:      last.Text.String,
			Type:      models.MessageType(last.Type.String),
			MediaURL:  last.MediaURL.String,
			Status:    models.MessageStatus(last.Status.String),
			Timestamp: last.Timestamp.Time,
		}
	}
	return ch, nil
}

// List returns every chat with its contact and last message, most recently
// active first
func (r *ChatRepository) List() ([]models.ChatSession, error) {
	rows, err := r.db.Query(chatQuery + " ORDER BY ch.updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []models.ChatSession{}
	for rows.Next() {
		ch, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *ch)
	}
	return chats, rows.Err()
}

// GetByID returns a chat by ID
func (r *ChatRepository) GetByID(id string) (*models.ChatSession, error) {
	ch, err := scanChat(r.db.QueryRow(chatQuery+" WHERE ch.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// GetByContactID returns the chat of a contact
func (r *ChatRepository) GetByContactID(contactID string) (*models.ChatSession, error) {
	ch, err := scanChat(r.db.QueryRow(chatQuery+" WHERE ch.contact_id = ?", contactID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// CreateOrGet returns the chat of a contact, creating it when missing. It
// reports whether a chat was created.
func (r *ChatRepository) CreateOrGet(contactID string) (*models.ChatSession, bool, error) {
	res, err := r.db.Exec(`
		INSERT INTO chats (id, contact_id, unread_count, status, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(contact_id) DO NOTHING`,
		uuid.New().String(), contactID, models.ChatActive, time.Now().UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	ch, err := r.GetByContactID(contactID)
	if err != nil {
		return nil, false, err
	}
	if ch == nil {
		return nil, false, fmt.Errorf("chat for contact %s not found after insert", contactID)
	}
	return ch, n > 0, nil
}

// MarkRead resets the unread count of a chat
func (r *ChatRepository) MarkRead(id string) error {
	_, err := r.db.Exec("UPDATE chats SET unread_count = 0 WHERE id = ?", id)
	return err
}

// ListMessages returns the messages of a chat in send order
func (r *ChatRepository) ListMessages(chatID string) ([]models.Message, error) {
	rows, err := r.db.Query(`
		SELECT id, chat_id, sender_id, text, type, media_url, status, timestamp
		FROM messages WHERE chat_id = ? ORDER BY timestamp, rowid`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Text, &m.Type, &m.MediaURL, &m.Status, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AddMessage inserts a message and makes it the chat's last message.
// Messages from the contact raise the unread count.
func (r *ChatRepository) AddMessage(m *models.Message) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	m.ID = uuid.New().String()
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	m.Timestamp = m.Timestamp.UTC()
	if m.Type == "" {
		m.Type = models.MessageText
	}
	if m.Status == "" {
		m.Status = models.MessageSent
	}

	_, err = tx.Exec(`
		INSERT INTO messages (id, chat_id, sender_id, text, type, media_url, status, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ChatID, m.SenderID, m.Text, m.Type, m.MediaURL, m.Status, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	unread := 0
	if !m.Outgoing() {
		unread = 1
	}
	res, err := tx.Exec(`
		UPDATE chats SET last_message_id = ?, unread_count = unread_count + ?, updated_at = ?
		WHERE id = ?`,
		m.ID, unread, m.Timestamp, m.ChatID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("chat %s not found", m.ChatID)
	}

	return tx.Commit()
}

// AdvanceOutbound moves outbound messages in status from to status to when
// they were sent at or before cutoff. It returns the number of messages
// moved.
func (r *ChatRepository) AdvanceOutbound(from, to models.MessageStatus, cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE messages SET status = ?
		WHERE sender_id = ? AND status = ? AND timestamp <= ?`,
		to, models.SenderMe, from, cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to advance messages: %w", err)
	}
	return res.RowsAffected()
}
