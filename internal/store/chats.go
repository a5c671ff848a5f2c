package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/persist"
)

// TempIDPrefix marks message ids assigned by the client before the server
// confirms the message
const TempIDPrefix = "temp-"

type chatState struct {
	Chats      []models.ChatSession `json:"chats"`
	SelectedID string               `json:"selectedId,omitempty"`
}

// ChatOption configures a chat store
type ChatOption func(*Chats)

// WithTempIDs replaces the generator for the part of temporary ids that
// follows TempIDPrefix
func WithTempIDs(gen func() string) ChatOption {
	return func(c *Chats) { c.newID = gen }
}

// WithClock replaces the time source used for optimistic timestamps
func WithClock(now func() time.Time) ChatOption {
	return func(c *Chats) { c.now = now }
}

// Chats holds chat sessions, per-chat message lists, the selected chat and
// typing flags
type Chats struct {
	api    ChatAPI
	mirror Mirror
	logger *slog.Logger
	newID  func() string
	now    func() time.Time

	mu       sync.Mutex
	chats    []models.ChatSession
	messages map[string][]models.Message
	selected string
	typing   map[string]bool
	loading  bool
}

// NewChats creates a chat store
func NewChats(api ChatAPI, mirror Mirror, logger *slog.Logger, opts ...ChatOption) *Chats {
	c := &Chats{
		api:      api,
		mirror:   mirrorOrNoop(mirror),
		logger:   loggerOrDefault(logger).With("component", "chats"),
		newID:    uuid.NewString,
		now:      time.Now,
		messages: make(map[string][]models.Message),
		typing:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore loads the persisted chat list and selection
func (c *Chats) Restore() error {
	var st chatState
	found, err := c.mirror.Load(persist.PartitionChats, &st)
	if err != nil {
		return fmt.Errorf("restore chats: %w", err)
	}
	if !found {
		return nil
	}

	c.mu.Lock()
	c.chats = st.Chats
	c.selected = st.SelectedID
	c.mu.Unlock()
	return nil
}

// persistLocked mirrors the chat list; c.mu must be held
func (c *Chats) persistLocked() {
	st := chatState{Chats: c.chats, SelectedID: c.selected}
	if err := c.mirror.Save(persist.PartitionChats, st); err != nil {
		c.logger.Error("failed to persist chats", "error", err)
	}
}

func (c *Chats) chatIndexLocked(id string) int {
	return slices.IndexFunc(c.chats, func(ch models.ChatSession) bool { return ch.ID == id })
}

// FetchChats replaces the chat list with the server's. The loading flag is
// only raised when nothing is cached yet.
func (c *Chats) FetchChats(ctx context.Context) error {
	c.mu.Lock()
	if len(c.chats) == 0 {
		c.loading = true
	}
	c.mu.Unlock()

	chats, err := c.api.ListChats(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.logger.Error("failed to fetch chats", "error", err)
		return fmt.Errorf("fetch chats: %w", err)
	}

	for i := range chats {
		if chats[i].ID == c.selected {
			chats[i].UnreadCount = 0
		}
	}
	c.chats = chats
	c.persistLocked()
	return nil
}

// SelectChat marks a chat as read and selected, then loads its messages
func (c *Chats) SelectChat(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.chatIndexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("chat %s: %w", id, ErrNotFound)
	}
	c.chats[idx].UnreadCount = 0
	c.selected = id
	c.persistLocked()
	c.mu.Unlock()

	return c.FetchMessages(ctx, id)
}

// FetchMessages replaces the cached messages of a chat with the server's.
// Local messages the server does not know yet (pending or failed) are kept
// at the tail.
func (c *Chats) FetchMessages(ctx context.Context, chatID string) error {
	msgs, err := c.api.ListMessages(ctx, chatID)
	if err != nil {
		c.logger.Error("failed to fetch messages", "chat_id", chatID, "error", err)
		return fmt.Errorf("fetch messages: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	known := make(map[string]bool, len(msgs))
	for i := range msgs {
		msgs[i].Delivery = models.DeliveryConfirmed
		known[msgs[i].ID] = true
	}
	for _, m := range c.messages[chatID] {
		if m.Delivery != models.DeliveryConfirmed && !known[m.ID] {
			msgs = append(msgs, m)
		}
	}
	c.messages[chatID] = msgs
	return nil
}

// SendMessage appends an optimistic message and posts it. On success the
// optimistic entry is replaced by the server message; on failure it is
// marked failed and can be retried with RetryMessage.
func (c *Chats) SendMessage(ctx context.Context, chatID, text string, typ models.MessageType, mediaURL string) (*models.Message, error) {
	if typ == "" {
		typ = models.MessageText
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("invalid message type %q", typ)
	}
	if strings.TrimSpace(text) == "" && mediaURL == "" {
		return nil, errors.New("message text is required")
	}

	msg := models.Message{
		ID:        TempIDPrefix + c.newID(),
		ChatID:    chatID,
		SenderID:  models.SenderMe,
		Text:      text,
		Timestamp: c.now(),
		Status:    models.MessageSent,
		Type:      typ,
		MediaURL:  mediaURL,
		Delivery:  models.DeliveryPending,
	}

	c.mu.Lock()
	c.messages[chatID] = append(c.messages[chatID], msg)
	if idx := c.chatIndexLocked(chatID); idx >= 0 {
		last := msg
		c.chats[idx].LastMessage = &last
	}
	c.mu.Unlock()

	return c.deliver(ctx, msg)
}

// RetryMessage posts a failed optimistic message again
func (c *Chats) RetryMessage(ctx context.Context, chatID, tempID string) (*models.Message, error) {
	c.mu.Lock()
	msgs := c.messages[chatID]
	idx := slices.IndexFunc(msgs, func(m models.Message) bool { return m.ID == tempID })
	if idx < 0 {
		c.mu.Unlock()
		return nil, fmt.Errorf("message %s: %w", tempID, ErrNotFound)
	}
	if msgs[idx].Delivery != models.DeliveryFailed {
		c.mu.Unlock()
		return nil, fmt.Errorf("message %s is %s, only failed messages can be retried", tempID, msgs[idx].Delivery)
	}
	msgs[idx].Delivery = models.DeliveryPending
	msg := msgs[idx]
	c.syncLastLocked(msg)
	c.mu.Unlock()

	return c.deliver(ctx, msg)
}

func (c *Chats) deliver(ctx context.Context, msg models.Message) (*models.Message, error) {
	req := models.SendMessageRequest{Text: msg.Text, Type: msg.Type, MediaURL: msg.MediaURL}
	confirmed, err := c.api.SendMessage(ctx, msg.ChatID, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := c.messages[msg.ChatID]
	idx := slices.IndexFunc(msgs, func(m models.Message) bool { return m.ID == msg.ID })

	if err != nil {
		if idx >= 0 {
			msgs[idx].Delivery = models.DeliveryFailed
			c.syncLastLocked(msgs[idx])
		}
		c.logger.Error("failed to send message", "chat_id", msg.ChatID, "temp_id", msg.ID, "error", err)
		return nil, fmt.Errorf("send message: %w", err)
	}

	srv := *confirmed
	srv.Delivery = models.DeliveryConfirmed

	switch {
	case slices.ContainsFunc(msgs, func(m models.Message) bool { return m.ID == srv.ID }):
		// a poll already brought the server copy in
		if idx >= 0 {
			msgs = slices.Delete(msgs, idx, idx+1)
		}
	case idx >= 0:
		msgs[idx] = srv
	default:
		msgs = append(msgs, srv)
	}
	c.messages[msg.ChatID] = msgs

	if ci := c.chatIndexLocked(msg.ChatID); ci >= 0 {
		if last := c.chats[ci].LastMessage; last == nil || last.ID == msg.ID {
			lm := srv
			c.chats[ci].LastMessage = &lm
		}
	}
	c.persistLocked()

	return &srv, nil
}

// syncLastLocked refreshes the chat's last message when it is m; c.mu must
// be held
func (c *Chats) syncLastLocked(m models.Message) {
	ci := c.chatIndexLocked(m.ChatID)
	if ci < 0 {
		return
	}
	if last := c.chats[ci].LastMessage; last != nil && last.ID == m.ID {
		lm := m
		c.chats[ci].LastMessage = &lm
	}
}

// StartChat selects the chat for a contact. When none is cached the chat is
// created (or fetched) on the server first, so the client never invents a
// chat id.
func (c *Chats) StartChat(ctx context.Context, contact models.Contact) (*models.ChatSession, error) {
	c.mu.Lock()
	var id string
	if idx := slices.IndexFunc(c.chats, func(ch models.ChatSession) bool { return ch.ContactID == contact.ID }); idx >= 0 {
		id = c.chats[idx].ID
	}
	c.mu.Unlock()

	if id == "" {
		created, err := c.api.StartChat(ctx, contact.ID)
		if err != nil {
			c.logger.Error("failed to start chat", "contact_id", contact.ID, "error", err)
			return nil, fmt.Errorf("start chat: %w", err)
		}
		if created.ContactID == "" {
			created.ContactID = contact.ID
		}
		if created.Contact.ID == "" {
			created.Contact = contact
		}
		if created.Status == "" {
			created.Status = models.ChatActive
		}

		c.mu.Lock()
		if c.chatIndexLocked(created.ID) < 0 {
			c.chats = append(c.chats, *created)
		}
		c.mu.Unlock()
		id = created.ID
	}

	if err := c.SelectChat(ctx, id); err != nil {
		return nil, err
	}

	chat, _ := c.Chat(id)
	return &chat, nil
}

// PollMessages refreshes the chat list and the selected chat's messages.
// Messages already cached take the server's delivery status; new ones are
// stored through ReceiveMessage. It returns the messages that were new.
func (c *Chats) PollMessages(ctx context.Context) ([]models.Message, error) {
	errChats := c.FetchChats(ctx)

	id := c.Selected()
	if id == "" {
		return nil, errChats
	}

	msgs, err := c.api.ListMessages(ctx, id)
	if err != nil {
		c.logger.Error("failed to poll messages", "chat_id", id, "error", err)
		return nil, errors.Join(errChats, fmt.Errorf("poll messages: %w", err))
	}

	var fresh []models.Message
	c.mu.Lock()
	cached := c.messages[id]
	for _, m := range msgs {
		idx := slices.IndexFunc(cached, func(cm models.Message) bool { return cm.ID == m.ID })
		if idx < 0 {
			fresh = append(fresh, m)
			continue
		}
		cached[idx].Status = m.Status
	}
	c.mu.Unlock()

	var received []models.Message
	for _, m := range fresh {
		if c.ReceiveMessage(m) {
			received = append(received, m)
		}
	}
	return received, errChats
}

// ReceiveMessage stores an incoming message. A message id that is already
// present is dropped. The unread count grows only when the chat is not
// selected. It reports whether the message was stored.
func (c *Chats) ReceiveMessage(msg models.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.ContainsFunc(c.messages[msg.ChatID], func(m models.Message) bool { return m.ID == msg.ID }) {
		return false
	}

	if msg.Delivery == "" {
		msg.Delivery = models.DeliveryConfirmed
	}
	c.messages[msg.ChatID] = append(c.messages[msg.ChatID], msg)

	if idx := c.chatIndexLocked(msg.ChatID); idx >= 0 {
		last := msg
		c.chats[idx].LastMessage = &last
		if msg.ChatID != c.selected {
			c.chats[idx].UnreadCount++
		}
		c.persistLocked()
	}
	return true
}

// SetTyping sets the typing flag of a chat
func (c *Chats) SetTyping(chatID string, typing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if typing {
		c.typing[chatID] = true
	} else {
		delete(c.typing, chatID)
	}
}

// Typing reports whether the contact of a chat is typing
func (c *Chats) Typing(chatID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing[chatID]
}

// Chats returns a copy of the chat list
func (c *Chats) Chats() []models.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.chats)
}

// Chat returns a cached chat
func (c *Chats) Chat(id string) (models.ChatSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.chatIndexLocked(id); idx >= 0 {
		return c.chats[idx], true
	}
	return models.ChatSession{}, false
}

// Messages returns a copy of a chat's messages in append order
func (c *Chats) Messages(chatID string) []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages[chatID])
}

// Selected returns the selected chat id
func (c *Chats) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Loading reports whether the first chat fetch is in flight
func (c *Chats) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}
