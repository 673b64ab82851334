package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/config"
	"github.com/spec-kit/campus-auth/internal/events"
)

// NotificationService delivers MFA codes and lockout alerts for audit
// events. Real email/SMS/webhook transports are out of scope; the stubs
// log what would be sent.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventMfaCodeIssued, n.handleMfaCodeIssued)
	n.dispatcher.Subscribe(events.EventAccountLocked, n.handleAccountLocked)
	n.dispatcher.Subscribe(events.EventSessionExpired, n.handleSessionExpired)
}

func (n *NotificationService) handleMfaCodeIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MfaCodeIssuedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("MfaCodeIssued", zap.String("username", event.Username), zap.String("role", string(payload.Role)))
	n.sendEmailStub(event.Username, "your one-time login code")
	n.sendSmsStub(event.Username)
	return nil
}

func (n *NotificationService) handleAccountLocked(ctx context.Context, event events.Event) error {
	n.logger.Warn("AccountLocked", zap.String("username", event.Username))
	n.sendWebhookStub(event)
	return nil
}

func (n *NotificationService) handleSessionExpired(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionExpired", zap.String("username", event.Username))
	return nil
}

func (n *NotificationService) sendEmailStub(username, subject string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("username", username),
		zap.String("subject", subject))
}

func (n *NotificationService) sendSmsStub(username string) {
	if strings.TrimSpace(n.cfg.SmsGateway) == "" {
		return
	}
	n.logger.Debug("sendSmsStub",
		zap.String("gateway", n.cfg.SmsGateway),
		zap.String("username", username))
}

func (n *NotificationService) sendWebhookStub(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)),
		zap.String("username", event.Username))
}
