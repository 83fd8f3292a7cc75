package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email)
        VALUES ($1, $2)
        RETURNING id`

	return r.db.QueryRow(ctx, query, user.Name, user.Email).Scan(&user.ID)
}

// Update overwrites name and email and reloads the stored row into user.
// Returns pgx.ErrNoRows when the id does not exist.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query, args, err := squirrel.Update("users").
		PlaceholderFormat(squirrel.Dollar).
		Set("name", user.Name).
		Set("email", user.Email).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING id, name, email").
		ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.Name, &user.Email)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, name, email
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the user; owned subscriptions go with it via ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
