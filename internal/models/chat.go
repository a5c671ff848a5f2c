package models

import "time"

// SenderMe is the sender id of messages written by the dashboard user
const SenderMe = "me"

// ChatStatus is the lifecycle state of a chat session
type ChatStatus string

const (
	ChatActive   ChatStatus = "active"
	ChatArchived ChatStatus = "archived"
)

// MessageStatus is the delivery status reported by the server
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// Next returns the following delivery status, or s when s is final
func (s MessageStatus) Next() MessageStatus {
	switch s {
	case MessageSent:
		return MessageDelivered
	case MessageDelivered:
		return MessageRead
	}
	return s
}

// MessageType is the kind of payload a message carries
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageDocument MessageType = "document"
	MessageTemplate MessageType = "template"
	MessageVideo    MessageType = "video"
)

// Valid reports whether t is a known message type
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageDocument, MessageTemplate, MessageVideo:
		return true
	}
	return false
}

// Delivery tracks an outgoing message on the client until the server confirms it
type Delivery string

const (
	DeliveryPending   Delivery = "pending"
	DeliveryConfirmed Delivery = "confirmed"
	DeliveryFailed    Delivery = "failed"
)

// Message is a single chat message
type Message struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	SenderID  string        `json:"senderId"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
	Status    MessageStatus `json:"status"`
	Type      MessageType   `json:"type"`
	MediaURL  string        `json:"mediaUrl,omitempty"`

	// Delivery is client-side only. Messages from the server are confirmed.
	Delivery Delivery `json:"delivery,omitempty"`
}

// Outgoing reports whether the message was written by the dashboard user
func (m *Message) Outgoing() bool {
	return m.SenderID == SenderMe
}

// ChatSession is a conversation with one contact
type ChatSession struct {
	ID          string     `json:"id"`
	ContactID   string     `json:"contactId"`
	Contact     Contact    `json:"contact"`
	LastMessage *Message   `json:"lastMessage,omitempty"`
	UnreadCount int        `json:"unreadCount"`
	Status      ChatStatus `json:"status"`
}

// SendMessageRequest is the body of POST /chats/{id}/messages
type SendMessageRequest struct {
	Text     string      `json:"text"`
	Type     MessageType `json:"type"`
	MediaURL string      `json:"mediaUrl,omitempty"`
}

// StartChatRequest is the body of POST /chats
type StartChatRequest struct {
	ContactID string `json:"contactId"`
}
