package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dku-library/ticket-chat/internal/events"
	"github.com/dku-library/ticket-chat/internal/persistence"
)

// Entry classification.
const (
	TypeInfo  = "INFO"
	TypeWarn  = "WARN"
	TypeError = "ERROR"
)

// Sink records ordered audit entries. Implementations must never let a
// write failure escape into the conversation flow.
type Sink interface {
	Append(ctx context.Context, entryType, stage, email, message string)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS audit_logs (
    id BIGSERIAL PRIMARY KEY,
    ts TIMESTAMPTZ NOT NULL,
    entry_type TEXT NOT NULL,
    stage TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT ''
)`

// Logger is a best-effort Postgres audit sink. It heals an uninitialized
// target by creating its table on first use, and swallows every failure
// after a log line.
type Logger struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	initOnce sync.Once
}

// NewLogger builds the sink. A nil pool (no DSN configured) yields a sink
// that drops entries silently.
func NewLogger(pg *persistence.Postgres, logger *zap.Logger) *Logger {
	return &Logger{pool: pg.PoolHandle(), logger: logger}
}

// Append writes one audit entry.
func (l *Logger) Append(ctx context.Context, entryType, stage, email, message string) {
	if l == nil || l.pool == nil {
		return
	}

	l.initOnce.Do(func() {
		if _, err := l.pool.Exec(ctx, createTableSQL); err != nil {
			l.logger.Warn("audit table init failed", zap.Error(err))
		}
	})

	const insertSQL = `
        INSERT INTO audit_logs (ts, entry_type, stage, email, message)
        VALUES ($1,$2,$3,$4,$5)`
	if _, err := l.pool.Exec(ctx, insertSQL, time.Now().UTC(), entryType, stage, email, message); err != nil {
		l.logger.Warn("audit append failed",
			zap.String("stage", stage),
			zap.Error(err))
	}
}

// RegisterHandlers subscribes INFO trail records for conversation events.
func (l *Logger) RegisterHandlers(dispatcher events.Dispatcher) {
	if l == nil || dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventConversationStarted, l.handleEvent)
	dispatcher.Subscribe(events.EventConversationCancelled, l.handleEvent)
	dispatcher.Subscribe(events.EventTicketSubmitted, l.handleEvent)
}

func (l *Logger) handleEvent(ctx context.Context, event events.Event) error {
	stage := strings.ToUpper(string(event.Type))
	message := fmt.Sprintf("event %s", event.ID)
	if payload, ok := event.Payload.(events.TicketSubmittedPayload); ok && payload.Result != nil {
		message = fmt.Sprintf("http=%d ok=%t ticket_id=%s", payload.Result.HTTPStatus, payload.Result.OK, payload.Result.TicketID)
	}
	l.Append(ctx, TypeInfo, stage, event.Email, message)
	return nil
}
