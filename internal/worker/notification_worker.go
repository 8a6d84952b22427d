package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to lifecycle
// events.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService) {
	if dispatcher == nil || notificationService == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}
