package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/report-portal/internal/service"
)

// StartNotificationWorker subscribes the notification service to report
// events. Handlers run synchronously on the publishing request.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("report event notifications registered")
	}
}
