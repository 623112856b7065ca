package worker

import (
	"go.uber.org/zap"

	"github.com/mall-of-cayman/marketplace-service/internal/events"
	"github.com/mall-of-cayman/marketplace-service/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// marketplace event stream. The subscription set lives here so the full list
// of notified events is visible in one place.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) {
	if dispatcher == nil || notifications == nil {
		return
	}

	for _, eventType := range []events.EventType{
		events.EventShopRegistered,
		events.EventShopApprovalChanged,
		events.EventShopBanChanged,
		events.EventManagerAssigned,
		events.EventManagerSuspended,
		events.EventDeliveryFeesUpdated,
	} {
		handler, ok := notifications.Handler(eventType)
		if !ok {
			logger.Warn("no notification handler for event", zap.String("event_type", string(eventType)))
			continue
		}
		dispatcher.Subscribe(eventType, handler)
	}

	logger.Info("notification worker started")
}
