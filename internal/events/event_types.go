package events

import (
	"time"

	"github.com/dku-library/ticket-chat/internal/domain"
)

// EventType enumerates conversation lifecycle events.
type EventType string

const (
	EventConversationStarted   EventType = "conversation_started"
	EventConversationCancelled EventType = "conversation_cancelled"
	EventTicketSubmitted       EventType = "ticket_submitted"
)

// Event is emitted by the conversation service.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserKey   string    `json:"user_key"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// TicketSubmittedPayload carries the final payload sent to the ticket API
// and the normalized result, for the confirmation email and audit trail.
type TicketSubmittedPayload struct {
	Final  domain.TicketDraft       `json:"final"`
	Result *domain.SubmissionResult `json:"result"`
}
