package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/horizonbank/backend/internal/models"
)

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `
		SELECT id, email, password, role, reset_password_token, reset_password_expires, created_at, updated_at
		FROM users WHERE email = $1`, strings.ToLower(email))
}

func (s *PostgresUserStore) FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return s.findOne(ctx, `
		SELECT id, email, password, role, reset_password_token, reset_password_expires, created_at, updated_at
		FROM users WHERE reset_password_token = $1 AND reset_password_expires > NOW()`, tokenHash)
}

func (s *PostgresUserStore) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	var resetToken sql.NullString
	var resetExpires sql.NullTime
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Password, &user.Role,
		&resetToken, &resetExpires, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	user.ResetPasswordToken = resetToken.String
	if resetExpires.Valid {
		expires := resetExpires.Time
		user.ResetPasswordExpires = &expires
	}
	return user, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	if user.Role == "" {
		user.Role = "user"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())`,
		user.ID, strings.ToLower(user.Email), user.Password, user.Role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) SetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET reset_password_token = $1, reset_password_expires = $2, updated_at = NOW()
		WHERE email = $3`,
		tokenHash, expires, strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $1, reset_password_token = NULL, reset_password_expires = NULL, updated_at = NOW()
		WHERE id = $2`,
		passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
