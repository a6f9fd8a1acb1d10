package models

import "time"

// UserRef is the public profile attached to a message participant.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Message is a single direct message between two users. Only Read ever changes after creation.
type Message struct {
	ID             string    `json:"id"`
	Sender         string    `json:"sender"`         // sender user id
	Receiver       string    `json:"receiver"`       // receiver user id
	Content        string    `json:"content"`        // never empty
	ConversationID string    `json:"conversationId"` // ConversationID(Sender, Receiver)
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`

	// Populated from the user directory on the way out, never persisted.
	SenderInfo   *UserRef `json:"senderInfo,omitempty"`
	ReceiverInfo *UserRef `json:"receiverInfo,omitempty"`
}

// ConversationSummary is one row of a user's inbox.
type ConversationSummary struct {
	ConversationID string  `json:"conversationId"`
	LastMessage    Message `json:"lastMessage"`
	UnreadCount    int     `json:"unreadCount"` // unread messages where the requesting user is the receiver
}
