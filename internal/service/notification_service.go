package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-api/internal/config"
	"github.com/spec-kit/bookstore-api/internal/events"
)

// Notification channels.
const (
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)

// Notification is one outbound message derived from a domain event.
type Notification struct {
	Channel   string
	Recipient string
	Subject   string
	Body      string
	EventID   string
	EventType events.EventType
}

// NotificationService turns order and account events into customer notifications.
// Delivery is log-only; no mail or webhook transport is attached yet.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// Handle composes and delivers the notifications for one event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	notes, err := n.Compose(event)
	if err != nil {
		return err
	}
	n.Deliver(ctx, notes)
	return nil
}

// Compose renders the notifications for event on every configured channel.
func (n *NotificationService) Compose(event events.Event) ([]Notification, error) {
	var recipient, subject, body string
	switch p := event.Payload.(type) {
	case events.OrderPlacedPayload:
		recipient = p.Email
		subject = fmt.Sprintf("Order #%d received", p.OrderID)
		body = fmt.Sprintf("Your order #%d with %d item(s) totalling %d is pending.", p.OrderID, p.ItemCount, p.TotalPrice)
	case events.UserBannedPayload:
		recipient = p.Email
		subject = "Your account has been suspended"
		body = fmt.Sprintf("Account %d was suspended on %s.", p.UserID, p.BannedAt.Format("2006-01-02"))
	default:
		return nil, fmt.Errorf("no notification template for %s (%T)", event.Type, event.Payload)
	}

	var notes []Notification
	if strings.TrimSpace(n.cfg.EmailFrom) != "" && recipient != "" {
		notes = append(notes, Notification{
			Channel:   ChannelEmail,
			Recipient: recipient,
			Subject:   subject,
			Body:      body,
			EventID:   event.ID,
			EventType: event.Type,
		})
	}
	if url := strings.TrimSpace(n.cfg.WebhookURL); url != "" {
		notes = append(notes, Notification{
			Channel:   ChannelWebhook,
			Recipient: url,
			Subject:   subject,
			Body:      body,
			EventID:   event.ID,
			EventType: event.Type,
		})
	}
	return notes, nil
}

// Deliver hands notifications to their channels.
func (n *NotificationService) Deliver(_ context.Context, notes []Notification) {
	for _, note := range notes {
		fields := []zap.Field{
			zap.String("channel", note.Channel),
			zap.String("recipient", note.Recipient),
			zap.String("subject", note.Subject),
			zap.String("event_id", note.EventID),
			zap.String("event_type", string(note.EventType)),
		}
		if note.Channel == ChannelEmail {
			fields = append(fields, zap.String("from", n.cfg.EmailFrom))
		}
		n.logger.Info("notification sent", fields...)
	}
}
