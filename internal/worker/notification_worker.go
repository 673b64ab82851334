package worker

import (
	"github.com/spec-kit/campus-auth/internal/service"
)

// StartNotificationWorker registers MFA delivery and alert handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
