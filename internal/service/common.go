package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/events"
	"github.com/spec-kit/subscription-service/internal/observability"
	apperrors "github.com/spec-kit/subscription-service/pkg/util/errorutil"
)

func userNotFound(id int64) error {
	return apperrors.NewNotFound(
		fmt.Sprintf("User not found with id: %d", id),
		domain.ErrUserNotFound,
		map[string]any{"user_id": id},
	)
}

func subscriptionNotFound(id int64) error {
	return apperrors.NewNotFound(
		fmt.Sprintf("Subscription with ID %d not found.", id),
		domain.ErrSubscriptionNotFound,
		map[string]any{"subscription_id": id},
	)
}

type eventPublisher struct {
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// publish is best effort: a failing listener never fails the request.
func (p eventPublisher) publish(ctx context.Context, eventType events.EventType, resourceID int64, payload interface{}) {
	if p.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ResourceID: resourceID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event listener failed",
			zap.String("event_type", string(eventType)),
			zap.Int64("resource_id", resourceID),
			zap.Error(err))
	}
}

func (p eventPublisher) record(operation string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrSubscriptionNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	p.metrics.RecordOperation(operation, outcome)
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
