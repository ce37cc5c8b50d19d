package worker

import (
	"github.com/dku-library/ticket-chat/internal/audit"
	"github.com/dku-library/ticket-chat/internal/events"
	"github.com/dku-library/ticket-chat/internal/notification"
)

// StartNotificationWorker subscribes the post-submission side effects:
// the confirmation mailer and the audit trail.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *notification.Service, auditLogger *audit.Logger) {
	if dispatcher == nil {
		return
	}
	if notificationService != nil {
		notificationService.RegisterHandlers(dispatcher)
	}
	auditLogger.RegisterHandlers(dispatcher)
}
