package store

import (
	"context"

	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct{}

const (
	createUserQuery = `
		INSERT INTO users (id, email, full_name, role, rating, skill_category, notification_channel, telegram_chat_id, created_at)
		VALUES (:id, :email, :full_name, :role, :rating, :skill_category, :notification_channel, :telegram_chat_id, :created_at)
	`
	updateUserProfileQuery = `
		UPDATE users SET
			full_name = :full_name,
			role = :role,
			skill_category = :skill_category,
			notification_channel = :notification_channel,
			telegram_chat_id = :telegram_chat_id
		WHERE id = :id
	`
)

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) GetUser(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*users.User, error) {
	var user users.User
	if err := sqlx.GetContext(ctx, q, &user, "SELECT * FROM users WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, q sqlx.QueryerContext, email string) (*users.User, error) {
	var user users.User
	if err := sqlx.GetContext(ctx, q, &user, "SELECT * FROM users WHERE email = ?", email); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsers returns the users with the given ids. Missing ids are skipped.
func (s *UserStore) GetUsers(ctx context.Context, q sqlx.QueryerContext, ids []uuid.UUID) ([]users.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT * FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	var list []users.User
	err = sqlx.SelectContext(ctx, q, &list, query, args...)
	return list, err
}

func (s *UserStore) ListUsers(ctx context.Context, q sqlx.QueryerContext) ([]users.User, error) {
	var list []users.User
	err := sqlx.SelectContext(ctx, q, &list, "SELECT * FROM users ORDER BY created_at ASC")
	return list, err
}

func (s *UserStore) CountUsers(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM users")
	return n, err
}

func (s *UserStore) CountOrganizers(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM users WHERE role = ?", users.RoleOrganizer)
	return n, err
}

func (s *UserStore) CreateUser(ctx context.Context, q sqlx.ExtContext, user *users.User) error {
	_, err := sqlx.NamedExecContext(ctx, q, createUserQuery, user)
	return err
}

func (s *UserStore) UpdateUserProfile(ctx context.Context, q sqlx.ExtContext, user *users.User) error {
	_, err := sqlx.NamedExecContext(ctx, q, updateUserProfileQuery, user)
	return err
}

func (s *UserStore) UpdateRating(ctx context.Context, q sqlx.ExecerContext, id uuid.UUID, rating float64) error {
	_, err := q.ExecContext(ctx, "UPDATE users SET rating = ? WHERE id = ?", rating, id)
	return err
}
