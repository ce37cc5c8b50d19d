package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dku-library/ticket-chat/internal/audit"
	"github.com/dku-library/ticket-chat/internal/domain"
	"github.com/dku-library/ticket-chat/internal/events"
)

const stageSendConfirmationEmail = "SEND_CONFIRMATION_EMAIL"

// Service emails the submitter after a successful ticket submission. Send
// failures are recorded on the audit sink and never re-raised.
type Service struct {
	mailer Mailer
	sink   audit.Sink
	logger *zap.Logger
}

// NewService creates the service.
func NewService(mailer Mailer, sink audit.Sink, logger *zap.Logger) *Service {
	return &Service{mailer: mailer, sink: sink, logger: logger}
}

// RegisterHandlers subscribes to submission events.
func (n *Service) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketSubmitted, n.handleTicketSubmitted)
}

func (n *Service) handleTicketSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketSubmittedPayload)
	if !ok {
		return nil
	}
	// Only a submission the API acknowledged gets a confirmation.
	if payload.Result == nil || !payload.Result.OK {
		return nil
	}

	subject, body := ConfirmationMessage(event.Email, payload.Final, payload.Result)
	if err := n.mailer.Send(event.Email, subject, body); err != nil {
		n.logger.Error("failed to send confirmation email",
			zap.String("email", event.Email),
			zap.Error(err))
		if n.sink != nil {
			n.sink.Append(ctx, audit.TypeError, stageSendConfirmationEmail, event.Email, err.Error())
		}
	}
	return nil
}

// ConfirmationMessage renders the fixed confirmation template.
func ConfirmationMessage(to string, final domain.TicketDraft, result *domain.SubmissionResult) (subject, body string) {
	subject = "DKU Library Systems Ticket Received"
	if result.TicketID != "" {
		subject += fmt.Sprintf(" (#%s)", result.TicketID)
	}

	lines := []string{
		"Hello,",
		"",
		"This is a confirmation that your ticket request has been submitted to DKU Library Systems.",
		"",
		"Summary",
		fmt.Sprintf("- Email: %s", to),
		fmt.Sprintf("- System: %s", final.System),
		fmt.Sprintf("- Title: %s", final.Title),
		fmt.Sprintf("- Urgency: %s", final.Urgency),
		fmt.Sprintf("- Impact: %s", final.Impact),
	}
	if result.TicketID != "" {
		lines = append(lines, fmt.Sprintf("- Ticket ID: %s", result.TicketID))
	}
	if result.TicketURL != "" {
		lines = append(lines, fmt.Sprintf("- Ticket Link: %s", result.TicketURL))
	}
	lines = append(lines,
		"",
		"We will follow up if additional details are needed.",
		"",
		"Regards,",
		"DKU Library Systems",
	)
	return subject, strings.Join(lines, "\n")
}
