package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind discriminates entries in a session transcript.
type MessageKind string

const (
	KindUser           MessageKind = "user"
	KindGeneratedQuery MessageKind = "generated_query"
	KindResultSet      MessageKind = "result_set"
	KindExplanation    MessageKind = "explanation"
	KindSystemNotice   MessageKind = "system_notice"
	KindError          MessageKind = "error"
)

// Message is one transcript entry. Text carries the payload for every kind
// except KindResultSet, which carries Results instead. Messages are
// append-only: once in a transcript they are never reordered or mutated.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text,omitempty"`
	Results   ResultSet   `json:"results,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewTextMessage creates a message whose payload is plain text.
func NewTextMessage(kind MessageKind, text string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewResultMessage creates a result_set message.
func NewResultMessage(results ResultSet) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindResultSet,
		Results:   results,
		CreatedAt: time.Now(),
	}
}
