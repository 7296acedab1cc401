package worker

import (
	"go.uber.org/zap"

	"github.com/clinic-kit/medapp/internal/events"
	"github.com/clinic-kit/medapp/internal/service"
)

// StartAuditWorker subscribes the audit log to every domain event published
// on dispatcher. Events are delivered synchronously, so there is no
// goroutine to stop.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) *service.AuditService {
	if dispatcher == nil {
		return nil
	}
	audit := service.NewAuditService(dispatcher, logger)
	audit.RegisterHandlers()
	return audit
}
