package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dku-library/ticket-chat/internal/domain"
	"github.com/dku-library/ticket-chat/internal/events"
)

type fakeMailer struct {
	sent []struct{ to, subject, body string }
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, struct{ to, subject, body string }{to, subject, body})
	return nil
}

type fakeSink struct {
	entries []struct{ entryType, stage, email, message string }
}

func (s *fakeSink) Append(_ context.Context, entryType, stage, email, message string) {
	s.entries = append(s.entries, struct{ entryType, stage, email, message string }{entryType, stage, email, message})
}

func submittedEvent(ok bool) events.Event {
	return events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketSubmitted,
		Email:     "a@dukekunshan.edu.cn",
		Timestamp: time.Now(),
		Payload: events.TicketSubmittedPayload{
			Final: domain.TicketDraft{
				Email:   "a@dukekunshan.edu.cn",
				Title:   "[Summon] Record page broken",
				System:  "Summon",
				Urgency: "High",
				Impact:  "Medium",
			},
			Result: &domain.SubmissionResult{
				OK:        ok,
				TicketID:  "T-42",
				TicketURL: "https://tickets.example.edu/T-42",
			},
		},
	}
}

func TestConfirmationSentOnSuccess(t *testing.T) {
	mailer := &fakeMailer{}
	sink := &fakeSink{}
	svc := NewService(mailer, sink, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)
	_ = dispatcher.Publish(context.Background(), submittedEvent(true))

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.to != "a@dukekunshan.edu.cn" {
		t.Fatalf("unexpected recipient: %s", mail.to)
	}
	if !strings.Contains(mail.subject, "#T-42") {
		t.Fatalf("ticket id missing from subject: %s", mail.subject)
	}
	for _, want := range []string{"- System: Summon", "- Urgency: High", "- Ticket Link: https://tickets.example.edu/T-42"} {
		if !strings.Contains(mail.body, want) {
			t.Fatalf("body missing %q:\n%s", want, mail.body)
		}
	}
	if len(sink.entries) != 0 {
		t.Fatalf("successful send must not write audit errors")
	}
}

func TestNoConfirmationOnFailedSubmission(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, &fakeSink{}, zap.NewNop())

	if err := svc.handleTicketSubmitted(context.Background(), submittedEvent(false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("email must not be sent when submission failed")
	}
}

func TestSendFailureIsCaughtAndAudited(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	sink := &fakeSink{}
	svc := NewService(mailer, sink, zap.NewNop())

	if err := svc.handleTicketSubmitted(context.Background(), submittedEvent(true)); err != nil {
		t.Fatalf("send failure must not propagate, got %v", err)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(sink.entries))
	}
	entry := sink.entries[0]
	if entry.entryType != "ERROR" || entry.stage != "SEND_CONFIRMATION_EMAIL" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.email != "a@dukekunshan.edu.cn" || entry.message != "smtp down" {
		t.Fatalf("unexpected audit entry contents: %+v", entry)
	}
}

func TestConfirmationMessageOmitsMissingTicketFields(t *testing.T) {
	_, body := ConfirmationMessage("a@dukekunshan.edu.cn", domain.TicketDraft{System: "Alma"}, &domain.SubmissionResult{OK: true})
	if strings.Contains(body, "Ticket ID") || strings.Contains(body, "Ticket Link") {
		t.Fatalf("empty ticket fields must be omitted:\n%s", body)
	}
}
