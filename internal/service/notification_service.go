package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mall-of-cayman/marketplace-service/internal/config"
	"github.com/mall-of-cayman/marketplace-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// Handler returns the handler for an event type; the worker decides what to
// subscribe where.
func (n *NotificationService) Handler(eventType events.EventType) (events.EventHandler, bool) {
	switch eventType {
	case events.EventShopRegistered:
		return n.handleShopRegistered, true
	case events.EventShopApprovalChanged:
		return n.handleShopApprovalChanged, true
	case events.EventShopBanChanged:
		return n.handleShopBanChanged, true
	case events.EventManagerAssigned:
		return n.handleManagerAssigned, true
	case events.EventManagerSuspended:
		return n.handleManagerSuspended, true
	case events.EventDeliveryFeesUpdated:
		return n.handleDeliveryFeesUpdated, true
	}
	return nil, false
}

func (n *NotificationService) handleShopRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("ShopRegistered", zap.String("shop_id", event.ShopID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleShopApprovalChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ShopApprovalChanged", zap.String("shop_id", event.ShopID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleShopBanChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ShopBanChanged", zap.String("shop_id", event.ShopID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleManagerAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("ManagerAssigned", zap.String("shop_id", event.ShopID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleManagerSuspended(ctx context.Context, event events.Event) error {
	n.logger.Info("ManagerSuspended", zap.String("shop_id", event.ShopID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDeliveryFeesUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("DeliveryFeesUpdated", zap.String("shop_id", event.ShopID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("shop_id", event.ShopID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("shop_id", event.ShopID),
		zap.String("event_type", string(event.Type)))
}
