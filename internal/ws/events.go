package ws

import (
	"encoding/json"
	"errors"
	"strings"
)

type EventType string

// Inbound events.
const (
	EventJoin        EventType = "join"
	EventSendMessage EventType = "sendMessage"
	EventTyping      EventType = "typing"
)

// Outbound events.
const (
	EventReceiveMessage EventType = "receiveMessage"
	EventMessageSent    EventType = "messageSent"
	EventUserTyping     EventType = "userTyping"
	EventError          EventType = "error"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SendMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

var errMissingUserID = errors.New("join requires a user id")

// parseJoin accepts either a bare user id string or {"userId": "..."}.
func parseJoin(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		var obj struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return "", err
		}
		id = obj.UserID
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errMissingUserID
	}
	return id, nil
}

func encode(event EventType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
