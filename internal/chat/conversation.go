package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dku-library/ticket-chat/internal/domain"
	"github.com/dku-library/ticket-chat/internal/events"
	"github.com/dku-library/ticket-chat/internal/observability"
	"github.com/dku-library/ticket-chat/internal/session"
	"github.com/dku-library/ticket-chat/internal/validation"
)

// Reply is the outward message for one conversation turn.
type Reply struct {
	OK           bool           `json:"ok"`
	Message      string         `json:"message"`
	TicketResult map[string]any `json:"ticket_result,omitempty"`
}

// Submitter sends a finished draft to the external ticket API.
type Submitter interface {
	Submit(ctx context.Context, payload domain.TicketDraft) (*domain.SubmissionResult, error)
}

// Service drives the intake conversation: one session per user context,
// one field per step, commands intercepted before step dispatch.
type Service struct {
	sessions   session.Store
	rules      *validation.Rules
	gateway    Submitter
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Dependencies bundles collaborators for the conversation service.
type Dependencies struct {
	Sessions   session.Store
	Rules      *validation.Rules
	Gateway    Submitter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewService constructs the service.
func NewService(deps Dependencies) *Service {
	return &Service{
		sessions:   deps.Sessions,
		rules:      deps.Rules,
		gateway:    deps.Gateway,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// EmailKey derives the session user context for an HTTP requester.
func EmailKey(email string) string {
	return "email:" + strings.ToLower(strings.TrimSpace(email))
}

// TelegramKey derives the session user context for a Telegram chat.
func TelegramKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

// StartChat validates the email and opens a fresh session at ASK_TITLE
// with urgency and impact pre-seeded to the default level. An invalid
// email mutates nothing.
func (s *Service) StartChat(ctx context.Context, userKey, email string) (*Reply, error) {
	em := strings.TrimSpace(email)
	if !s.rules.ValidEmail(em) {
		return &Reply{OK: false, Message: fmt.Sprintf(
			"Email is required and must be a %s address (name@%s).",
			s.rules.EmailDomain(), s.rules.EmailDomain())}, nil
	}

	sess := &domain.Session{
		ID:   uuid.NewString(),
		Step: domain.StepAskTitle,
		Payload: domain.TicketDraft{
			Email:   em,
			Urgency: domain.DefaultLevel,
			Impact:  domain.DefaultLevel,
		},
	}
	if err := s.sessions.Put(ctx, userKey, sess); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventConversationStarted, userKey, em, nil)

	return &Reply{OK: true, Message: fmt.Sprintf(
		"Please enter a one-sentence summary (Ticket Title, %d–%d characters). Example: “Summon record page should not display MARC 035.”",
		validation.TitleMinChars, validation.TitleMaxChars)}, nil
}

// HasSession reports whether a live session exists for the user context.
func (s *Service) HasSession(ctx context.Context, userKey string) (bool, error) {
	sess, err := s.sessions.Get(ctx, userKey)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}

// ChatTurn processes one user message against the current session.
func (s *Service) ChatTurn(ctx context.Context, userKey, input string) (*Reply, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return &Reply{OK: false, Message: "Please enter a message."}, nil
	}

	// restart and cancel override step interpretation at every step,
	// including CONFIRM.
	cmd := strings.ToLower(text)
	switch cmd {
	case "restart":
		if err := s.sessions.Clear(ctx, userKey); err != nil {
			return nil, err
		}
		s.publish(ctx, events.EventConversationCancelled, userKey, "", nil)
		return &Reply{OK: true, Message: "Restarted. Please enter your email again (or click Start)."}, nil
	case "cancel":
		if err := s.sessions.Clear(ctx, userKey); err != nil {
			return nil, err
		}
		s.publish(ctx, events.EventConversationCancelled, userKey, "", nil)
		return &Reply{OK: true, Message: "Cancelled. No ticket was created."}, nil
	}

	sess, err := s.sessions.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return &Reply{OK: false, Message: "Session not found or expired. Please click Start to begin."}, nil
	}

	switch sess.Step {
	case domain.StepAskTitle:
		if !validation.ValidTitle(text) {
			return s.reject(sess, fmt.Sprintf("Title must be %d–%d characters. Please re-enter.",
				validation.TitleMinChars, validation.TitleMaxChars)), nil
		}
		sess.Payload.Title = text
		return s.advance(ctx, userKey, sess, domain.StepAskSystem, fmt.Sprintf(
			"Which system is this about? Please enter one of: %s",
			strings.Join(domain.AllowedSystems, " / ")))

	case domain.StepAskSystem:
		v, ok := validation.PickOne(text, domain.AllowedSystems)
		if !ok {
			return s.reject(sess, fmt.Sprintf("System not recognized. It must be one of: %s",
				strings.Join(domain.AllowedSystems, " / "))), nil
		}
		sess.Payload.System = v
		return s.advance(ctx, userKey, sess, domain.StepAskDesc, fmt.Sprintf(
			"Please provide details (Description, at least %d characters): steps taken + expected result + actual result + any error message (if applicable).",
			validation.DescMinChars))

	case domain.StepAskDesc:
		if !validation.ValidDescription(text) {
			return s.reject(sess, fmt.Sprintf(
				"Description must be at least %d characters (currently %d). Please add more details: steps + expected/actual + errors.",
				validation.DescMinChars, validation.CountChars(text))), nil
		}
		sess.Payload.Description = text
		return s.advance(ctx, userKey, sess, domain.StepAskUrgency, fmt.Sprintf(
			"What is the urgency? Enter one of: %s (default: %s).",
			strings.Join(domain.AllowedLevels, " / "), domain.DefaultLevel))

	case domain.StepAskUrgency:
		v, ok := validation.PickOne(text, domain.AllowedLevels)
		if !ok {
			return s.reject(sess, fmt.Sprintf("Urgency must be one of: %s",
				strings.Join(domain.AllowedLevels, " / "))), nil
		}
		sess.Payload.Urgency = v
		return s.advance(ctx, userKey, sess, domain.StepAskImpact, fmt.Sprintf(
			"What is the impact? Enter one of: %s",
			strings.Join(domain.AllowedLevels, " / ")))

	case domain.StepAskImpact:
		v, ok := validation.PickOne(text, domain.AllowedLevels)
		if !ok {
			return s.reject(sess, fmt.Sprintf("Impact must be one of: %s",
				strings.Join(domain.AllowedLevels, " / "))), nil
		}
		sess.Payload.Impact = v
		return s.advance(ctx, userKey, sess, domain.StepConfirm,
			"Please confirm the ticket below (type \"confirm\" to create; type \"restart\" to start over):\n\n"+renderSummary(sess.Payload))

	case domain.StepConfirm:
		return s.confirmTurn(ctx, userKey, sess, cmd)

	default:
		// Corrupt step value: terminal recovery, not a normal transition.
		s.logger.Warn("resetting session with unknown step",
			zap.String("user_key", userKey),
			zap.String("step", string(sess.Step)))
		if err := s.sessions.Clear(ctx, userKey); err != nil {
			return nil, err
		}
		return &Reply{OK: false, Message: "Session state error. Resetting. Please click Start to begin again."}, nil
	}
}

// reject returns a corrective reply without touching step or payload.
func (s *Service) reject(sess *domain.Session, message string) *Reply {
	s.metrics.RecordRejection(string(sess.Step))
	return &Reply{OK: false, Message: message}
}

// advance writes the mutated session at its next step and returns the
// next prompt.
func (s *Service) advance(ctx context.Context, userKey string, sess *domain.Session, next domain.Step, prompt string) (*Reply, error) {
	sess.Step = next
	if err := s.sessions.Put(ctx, userKey, sess); err != nil {
		return nil, err
	}
	return &Reply{OK: true, Message: prompt}, nil
}

func (s *Service) confirmTurn(ctx context.Context, userKey string, sess *domain.Session, cmd string) (*Reply, error) {
	if cmd != "confirm" {
		return s.reject(sess, "Not created. Type \"confirm\" to create, \"restart\" to start over, or \"cancel\" to cancel."), nil
	}

	// Full re-validation: fields may have been populated out of order or
	// tampered with between turns.
	if errs := s.rules.ValidateDraft(sess.Payload); len(errs) > 0 {
		s.metrics.RecordRejection(string(sess.Step))
		return &Reply{OK: false, Message: "Validation failed:\n- " + strings.Join(errs, "\n- ") +
			"\n\nType \"restart\" to start over, or fix the inputs and then type \"confirm\" again."}, nil
	}

	final := buildFinalPayload(sess.Payload)

	result, err := s.gateway.Submit(ctx, final)
	if err != nil {
		// Downstream failure is never fatal to the conversation; the
		// user still gets an acknowledgement carrying the failure.
		s.logger.Error("ticket submission failed", zap.Error(err))
		result = &domain.SubmissionResult{
			OK:    false,
			Error: err.Error(),
			Raw:   map[string]any{"ok": false, "error": err.Error()},
		}
	}
	s.metrics.RecordSubmission(result.OK)

	s.publish(ctx, events.EventTicketSubmitted, userKey, sess.Payload.Email, events.TicketSubmittedPayload{
		Final:  final,
		Result: result,
	})

	if err := s.sessions.Clear(ctx, userKey); err != nil {
		s.logger.Warn("failed to clear session after submission", zap.Error(err))
	}

	return &Reply{
		OK:           true,
		Message:      "Ticket creation request submitted. A confirmation email will be sent shortly.",
		TicketResult: result.Raw,
	}, nil
}

// buildFinalPayload prefixes the title with the system and restates
// system/urgency/impact at the top of the description.
func buildFinalPayload(p domain.TicketDraft) domain.TicketDraft {
	return domain.TicketDraft{
		Email:       p.Email,
		Title:       fmt.Sprintf("[%s] %s", p.System, p.Title),
		System:      p.System,
		Description: fmt.Sprintf("System: %s\nUrgency: %s\nImpact: %s\n\n%s", p.System, p.Urgency, p.Impact, p.Description),
		Urgency:     p.Urgency,
		Impact:      p.Impact,
	}
}

func renderSummary(p domain.TicketDraft) string {
	return strings.Join([]string{
		fmt.Sprintf("Email: %s", orMissing(p.Email)),
		fmt.Sprintf("System: %s", orMissing(p.System)),
		fmt.Sprintf("Title: %s", orMissing(p.Title)),
		fmt.Sprintf("Urgency: %s", valueOr(p.Urgency, domain.DefaultLevel)),
		fmt.Sprintf("Impact: %s", valueOr(p.Impact, domain.DefaultLevel)),
		"",
		fmt.Sprintf("Description:\n%s", p.Description),
	}, "\n")
}

func orMissing(v string) string {
	return valueOr(v, "(missing)")
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (s *Service) publish(ctx context.Context, eventType events.EventType, userKey, email string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserKey:   userKey,
		Email:     email,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
