package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/events"
	apperrors "github.com/spec-kit/subscription-service/pkg/util/errorutil"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type subscriptionFixture struct {
	users      *MockUserRepo
	subs       *MockSubscriptionRepo
	dispatcher *recordingDispatcher
	svc        *SubscriptionService
}

func newSubscriptionFixture() *subscriptionFixture {
	f := &subscriptionFixture{
		users:      new(MockUserRepo),
		subs:       new(MockSubscriptionRepo),
		dispatcher: &recordingDispatcher{},
	}
	f.svc = NewSubscriptionService(SubscriptionDependencies{
		UserRepo:         f.users,
		SubscriptionRepo: f.subs,
		Dispatcher:       f.dispatcher,
	})
	return f
}

func TestAddSubscription(t *testing.T) {
	f := newSubscriptionFixture()
	f.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)
	f.subs.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Subscription) bool {
		return s.ID == 0 && s.UserID == 1 && s.ServiceName == "Netflix"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Subscription).ID = 10
	}).Return(nil)

	data := domain.Subscription{
		ID:          555,
		UserID:      42,
		ServiceName: "Netflix",
		StartDate:   day(2024, 1, 1),
		EndDate:     day(2024, 2, 1),
		Active:      true,
	}
	sub, err := f.svc.AddSubscription(context.Background(), 1, data)
	require.NoError(t, err)
	assert.Equal(t, int64(10), sub.ID)
	assert.Equal(t, int64(1), sub.UserID)
	assert.Equal(t, day(2024, 1, 1), sub.StartDate)
	assert.True(t, sub.Active)

	require.Len(t, f.dispatcher.published, 1)
	payload, ok := f.dispatcher.published[0].Payload.(events.SubscriptionAddedPayload)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", payload.StartDate)
	f.subs.AssertExpectations(t)
}

func TestAddSubscription_UserMissing(t *testing.T) {
	f := newSubscriptionFixture()
	f.users.On("GetByID", mock.Anything, int64(7)).Return(nil, pgx.ErrNoRows)

	_, err := f.svc.AddSubscription(context.Background(), 7, domain.Subscription{ServiceName: "Netflix"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, "User not found with id: 7", apperrors.ToDomainError(err).Message)
	f.subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddSubscription_UserRemovedConcurrently(t *testing.T) {
	f := newSubscriptionFixture()
	f.users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7}, nil)
	f.subs.On("Create", mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23503"})

	_, err := f.svc.AddSubscription(context.Background(), 7, domain.Subscription{ServiceName: "Netflix"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, f.dispatcher.published)
}

func TestGetUserSubscriptions(t *testing.T) {
	f := newSubscriptionFixture()
	stored := []domain.Subscription{
		{ID: 1, UserID: 1, ServiceName: "Netflix", StartDate: day(2024, 1, 1), EndDate: day(2024, 2, 1), Active: true},
	}
	f.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)
	f.subs.On("ListByUser", mock.Anything, int64(1)).Return(stored, nil)

	subs, err := f.svc.GetUserSubscriptions(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, stored, subs)
}

func TestGetUserSubscriptions_UserMissing(t *testing.T) {
	f := newSubscriptionFixture()
	f.users.On("GetByID", mock.Anything, int64(2)).Return(nil, pgx.ErrNoRows)

	_, err := f.svc.GetUserSubscriptions(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	f.subs.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestDeleteSubscriptionTwice(t *testing.T) {
	f := newSubscriptionFixture()
	f.subs.On("Delete", mock.Anything, int64(3)).Return(nil).Once()
	f.subs.On("Delete", mock.Anything, int64(3)).Return(pgx.ErrNoRows).Once()

	require.NoError(t, f.svc.DeleteSubscription(context.Background(), 3))

	err := f.svc.DeleteSubscription(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
	assert.Equal(t, "Subscription with ID 3 not found.", apperrors.ToDomainError(err).Message)
	assert.Equal(t, []events.EventType{events.EventSubscriptionDeleted}, f.dispatcher.types())
}

func TestDeleteSubscription_StoreFailure(t *testing.T) {
	f := newSubscriptionFixture()
	f.subs.On("Delete", mock.Anything, int64(3)).Return(errors.New("deadlock"))

	err := f.svc.DeleteSubscription(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func TestGetTopSubscriptions(t *testing.T) {
	f := newSubscriptionFixture()
	ordered := []domain.Subscription{
		{ID: 3, StartDate: day(2024, 5, 1)},
		{ID: 1, StartDate: day(2024, 3, 1)},
		{ID: 2, StartDate: day(2023, 12, 1)},
	}
	f.subs.On("ListByStartDateDesc", mock.Anything).Return(ordered, nil)

	subs, err := f.svc.GetTopSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 3)
	for i := 1; i < len(subs); i++ {
		assert.False(t, subs[i-1].StartDate.Before(subs[i].StartDate))
	}
}

func TestGetTopSubscriptions_StoreFailure(t *testing.T) {
	f := newSubscriptionFixture()
	f.subs.On("ListByStartDateDesc", mock.Anything).Return(nil, errors.New("boom"))

	_, err := f.svc.GetTopSubscriptions(context.Background())
	assert.Error(t, err)
}
