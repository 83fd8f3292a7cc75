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

// UserService coordinates user lifecycle operations.
type UserService struct {
	users  repository.UserRepository
	events eventPublisher
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users: deps.UserRepo,
		events: eventPublisher{
			dispatcher: deps.Dispatcher,
			metrics:    deps.Metrics,
			logger:     orNop(deps.Logger),
		},
	}
}

// CreateUser stores a new user and returns it with its assigned id.
func (s *UserService) CreateUser(ctx context.Context, name, email string) (user *domain.User, err error) {
	defer func() { s.events.record("user.create", err) }()

	user = &domain.User{Name: name, Email: email}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.events.publish(ctx, events.EventUserCreated, user.ID, events.UserPayload{Name: user.Name, Email: user.Email})
	return user, nil
}

// GetUserByID loads a user.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (user *domain.User, err error) {
	defer func() { s.events.record("user.get", err) }()

	user, err = s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, userNotFound(id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// UpdateUser overwrites name and email of an existing user.
func (s *UserService) UpdateUser(ctx context.Context, id int64, name, email string) (user *domain.User, err error) {
	defer func() { s.events.record("user.update", err) }()

	user = &domain.User{ID: id, Name: name, Email: email}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, userNotFound(id)
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	s.events.publish(ctx, events.EventUserUpdated, user.ID, events.UserPayload{Name: user.Name, Email: user.Email})
	return user, nil
}

// DeleteUser removes a user together with all of its subscriptions.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (err error) {
	defer func() { s.events.record("user.delete", err) }()

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userNotFound(id)
		}
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.events.publish(ctx, events.EventUserDeleted, id, nil)
	return nil
}
