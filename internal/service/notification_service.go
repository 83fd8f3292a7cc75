package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/subscription-service/internal/config"
	"github.com/spec-kit/subscription-service/internal/events"
)

// ChannelPublisher sends raw payloads to a named pub/sub channel.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService logs domain events and forwards them to Redis pub/sub.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  ChannelPublisher
	logger     *zap.Logger
	channel    string
}

// NewNotificationService creates the service. publisher may be nil, in which
// case events are only logged.
func NewNotificationService(dispatcher events.Dispatcher, publisher ChannelPublisher, logger *zap.Logger, cfg config.RedisConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     orNop(logger),
		channel:    strings.TrimSpace(cfg.EventsChannel),
	}
}

// RegisterHandlers subscribes to every event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("resource", event.Type.Resource()),
		zap.Int64("resource_id", event.ResourceID),
		zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.publisher == nil || n.channel == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := n.publisher.Publish(ctx, n.channel, body); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	n.logger.Debug("event forwarded", zap.String("channel", n.channel), zap.String("event_id", event.ID))
	return nil
}
