package amqp

import (
	"encoding/json"

	"github.com/google/uuid"

	"smartfinance/internal/events"
)

// ChangeMessage is the wire form of a record store event. The event fields
// are inlined next to a message id consumers can deduplicate on.
type ChangeMessage struct {
	MessageID string `json:"messageId"`
	RecordID  string `json:"recordId,omitempty"`
	events.Event
}

// NewChangeMessage wraps ev with a fresh message id.
func NewChangeMessage(ev events.Event) *ChangeMessage {
	return &ChangeMessage{
		MessageID: uuid.NewString(),
		RecordID:  ev.RecordID(),
		Event:     ev,
	}
}

// RoutingKey is "<event>.<user id>" so consumers can bind per event or per
// user on the topic exchange.
func (m *ChangeMessage) RoutingKey() string {
	return string(m.Name) + "." + m.UserID
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message published by Client.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
