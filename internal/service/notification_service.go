package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/talent-ledger/internal/config"
	"github.com/spec-kit/talent-ledger/internal/events"
)

// NotificationService handles emitting notifications for domain events.
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
	n.dispatcher.Subscribe(events.EventGigInvitationIssued, n.handleGigInvitationIssued)
	n.dispatcher.Subscribe(events.EventGigAccepted, n.handleWebhookEvent)
	n.dispatcher.Subscribe(events.EventAuctionCancelled, n.handleWebhookEvent)
	n.dispatcher.Subscribe(events.EventAuctionSold, n.handleWebhookEvent)
	n.dispatcher.Subscribe(events.EventCallSettled, n.handleWebhookEvent)
	n.dispatcher.Subscribe(events.EventBalanceChanged, n.handleBalanceChanged)
}

func (n *NotificationService) handleGigInvitationIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.GigInvitationIssuedPayload)
	if !ok {
		return nil
	}
	// the accept URL carries a bearer token; it goes into the email body only
	n.logger.Info("GigInvitationIssued",
		zap.String("gig_id", payload.GigID),
		zap.String("model_profile_id", payload.ModelProfileID))
	n.sendEmailNotificationStub(ctx, event, payload.ModelProfileID, "You're invited to "+payload.GigTitle, payload.AcceptURL)
	return nil
}

func (n *NotificationService) handleBalanceChanged(_ context.Context, event events.Event) error {
	n.logger.Debug("BalanceChanged", zap.String("actor_id", event.Actor.ID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleWebhookEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, recipientProfileID, subject, body string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to_profile_id", recipientProfileID),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
