package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// SubscriptionRepository manages subscription persistence.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Subscription, error)
	ListByStartDateDesc(ctx context.Context) ([]domain.Subscription, error)
}

type subscriptionRepository struct {
	db DBTX
}

var subscriptionColumns = []string{"id", "user_id", "service_name", "start_date", "end_date", "active"}

// NewSubscriptionRepository builds the repository.
func NewSubscriptionRepository(db DBTX) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (user_id, service_name, start_date, end_date, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		sub.UserID,
		sub.ServiceName,
		sub.StartDate,
		sub.EndDate,
		sub.Active,
	).Scan(&sub.ID)
}

func (r *subscriptionRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM subscriptions WHERE id=$1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	return r.list(ctx, squirrel.Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id"))
}

// ListByStartDateDesc returns every subscription, most recently started first.
func (r *subscriptionRepository) ListByStartDateDesc(ctx context.Context) ([]domain.Subscription, error) {
	return r.list(ctx, squirrel.Select(subscriptionColumns...).
		From("subscriptions").
		OrderBy("start_date DESC", "id DESC"))
}

func (r *subscriptionRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]domain.Subscription, error) {
	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Subscription, 0)
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.ServiceName, &sub.StartDate, &sub.EndDate, &sub.Active); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
