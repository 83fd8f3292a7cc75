package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/events"
	"github.com/spec-kit/subscription-service/internal/observability"
	"github.com/spec-kit/subscription-service/internal/repository"
)

// SubscriptionService coordinates subscription workflows.
type SubscriptionService struct {
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	events        eventPublisher
}

// SubscriptionDependencies bundles collaborators for the subscription service.
type SubscriptionDependencies struct {
	UserRepo         repository.UserRepository
	SubscriptionRepo repository.SubscriptionRepository
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(deps SubscriptionDependencies) *SubscriptionService {
	return &SubscriptionService{
		users:         deps.UserRepo,
		subscriptions: deps.SubscriptionRepo,
		events: eventPublisher{
			dispatcher: deps.Dispatcher,
			metrics:    deps.Metrics,
			logger:     orNop(deps.Logger),
		},
	}
}

// AddSubscription attaches a new subscription to userID. The ID and UserID
// carried by data are ignored; the store assigns the id.
func (s *SubscriptionService) AddSubscription(ctx context.Context, userID int64, data domain.Subscription) (sub *domain.Subscription, err error) {
	defer func() { s.events.record("subscription.add", err) }()

	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	sub = &domain.Subscription{
		UserID:      userID,
		ServiceName: data.ServiceName,
		StartDate:   data.StartDate,
		EndDate:     data.EndDate,
		Active:      data.Active,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		// the user was removed between the lookup and the insert
		if repository.IsForeignKeyViolation(err) {
			return nil, userNotFound(userID)
		}
		return nil, fmt.Errorf("create subscription for user %d: %w", userID, err)
	}

	s.events.publish(ctx, events.EventSubscriptionAdded, sub.ID, events.SubscriptionAddedPayload{
		UserID:      sub.UserID,
		ServiceName: sub.ServiceName,
		StartDate:   sub.StartDate.Format(domain.DateLayout),
		EndDate:     sub.EndDate.Format(domain.DateLayout),
		Active:      sub.Active,
	})
	return sub, nil
}

// GetUserSubscriptions lists the subscriptions owned by userID.
func (s *SubscriptionService) GetUserSubscriptions(ctx context.Context, userID int64) (subs []domain.Subscription, err error) {
	defer func() { s.events.record("subscription.list", err) }()

	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	subs, err = s.subscriptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions of user %d: %w", userID, err)
	}
	return subs, nil
}

// DeleteSubscription removes a subscription by id. Ownership is not checked.
func (s *SubscriptionService) DeleteSubscription(ctx context.Context, subscriptionID int64) (err error) {
	defer func() { s.events.record("subscription.delete", err) }()

	if err := s.subscriptions.Delete(ctx, subscriptionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscriptionNotFound(subscriptionID)
		}
		return fmt.Errorf("delete subscription %d: %w", subscriptionID, err)
	}
	s.events.publish(ctx, events.EventSubscriptionDeleted, subscriptionID, nil)
	return nil
}

// GetTopSubscriptions returns every subscription ordered by start date,
// newest first. No limit is applied.
func (s *SubscriptionService) GetTopSubscriptions(ctx context.Context) (subs []domain.Subscription, err error) {
	defer func() { s.events.record("subscription.top", err) }()

	subs, err = s.subscriptions.ListByStartDateDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list top subscriptions: %w", err)
	}
	return subs, nil
}

func (s *SubscriptionService) ensureUser(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userNotFound(userID)
		}
		return fmt.Errorf("get user %d: %w", userID, err)
	}
	return nil
}
