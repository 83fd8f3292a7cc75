package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/subscription-service/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO users \(name, email\)`).
		WithArgs("Ann", "a@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	user := &domain.User{Name: "Ann", Email: "a@x.com"}
	require.NoError(t, NewUserRepository(mock).Create(context.Background(), user))
	assert.Equal(t, int64(1), user.ID)
}

func TestUserRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, name, email\s+FROM users WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email"}).AddRow(int64(1), "Ann", "a@x.com"))

	user, err := NewUserRepository(mock).GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 1, Name: "Ann", Email: "a@x.com"}, user)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE id=\$1`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewUserRepository(mock).GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepository_Update(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`UPDATE users SET name = \$1, email = \$2 WHERE id = \$3 RETURNING id, name, email`).
		WithArgs("Bea", "b@x.com", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email"}).AddRow(int64(1), "Bea", "b@x.com"))

	user := &domain.User{ID: 1, Name: "Bea", Email: "b@x.com"}
	require.NoError(t, NewUserRepository(mock).Update(context.Background(), user))
	assert.Equal(t, "Bea", user.Name)
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`UPDATE users`).
		WithArgs("Bea", "b@x.com", int64(2)).
		WillReturnError(pgx.ErrNoRows)

	err := NewUserRepository(mock).Update(context.Background(), &domain.User{ID: 2, Name: "Bea", Email: "b@x.com"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepository_Delete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM users WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM users WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewUserRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 1), pgx.ErrNoRows)
}

func TestSubscriptionRepository_Create(t *testing.T) {
	mock := newMock(t)
	start, end := date(2024, 1, 1), date(2024, 2, 1)
	mock.ExpectQuery(`INSERT INTO subscriptions`).
		WithArgs(int64(1), "Netflix", start, end, true).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))

	sub := &domain.Subscription{UserID: 1, ServiceName: "Netflix", StartDate: start, EndDate: end, Active: true}
	require.NoError(t, NewSubscriptionRepository(mock).Create(context.Background(), sub))
	assert.Equal(t, int64(5), sub.ID)
}

func TestSubscriptionRepository_Create_MissingUser(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO subscriptions`).
		WithArgs(int64(7), "Netflix", pgxmock.AnyArg(), pgxmock.AnyArg(), true).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	sub := &domain.Subscription{UserID: 7, ServiceName: "Netflix", Active: true}
	err := NewSubscriptionRepository(mock).Create(context.Background(), sub)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
}

func TestSubscriptionRepository_Delete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM subscriptions WHERE id=\$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := NewSubscriptionRepository(mock).Delete(context.Background(), 3)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestSubscriptionRepository_ListByUser(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, user_id, service_name, start_date, end_date, active FROM subscriptions WHERE user_id = \$1 ORDER BY id`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(subscriptionColumns).
			AddRow(int64(1), int64(1), "Netflix", date(2024, 1, 1), date(2024, 2, 1), true).
			AddRow(int64(2), int64(1), "Spotify", date(2024, 3, 1), date(2024, 4, 1), false))

	subs, err := NewSubscriptionRepository(mock).ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Spotify", subs[1].ServiceName)
	assert.False(t, subs[1].Active)
}

func TestSubscriptionRepository_ListByUser_Empty(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM subscriptions WHERE user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(subscriptionColumns))

	subs, err := NewSubscriptionRepository(mock).ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, subs)
	assert.Empty(t, subs)
}

func TestSubscriptionRepository_ListByStartDateDesc(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT (.+) FROM subscriptions ORDER BY start_date DESC, id DESC`).
		WillReturnRows(pgxmock.NewRows(subscriptionColumns).
			AddRow(int64(2), int64(1), "Spotify", date(2024, 3, 1), date(2024, 4, 1), true).
			AddRow(int64(1), int64(2), "Netflix", date(2024, 1, 1), date(2024, 2, 1), true))

	subs, err := NewSubscriptionRepository(mock).ListByStartDateDesc(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(2), subs[0].ID)
}

func TestSubscriptionRepository_ListQueryError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM subscriptions ORDER BY`).WillReturnError(errors.New("conn closed"))

	_, err := NewSubscriptionRepository(mock).ListByStartDateDesc(context.Background())
	assert.EqualError(t, err, "conn closed")
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
}
