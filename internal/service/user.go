package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/launchpanel/hub/internal/model"
)

// ErrUserNotFound is returned when a targeted user does not exist or is
// soft-deleted.
var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	db *sql.DB
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

type CreateUserInput struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}

type UpdateUserInput struct {
	Name    *string `json:"name"`
	APIKey  *string `json:"api_key"`
	Enabled *bool   `json:"enabled"`
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, email, name, api_key, enabled, created_at, updated_at
		FROM users WHERE deleted = 0 ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var enabled int
		if err := rows.Scan(&u.UserID, &u.Email, &u.Name, &u.APIKey, &enabled, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Enabled = enabled == 1
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	var enabled int
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, email, name, api_key, enabled, created_at, updated_at
		FROM users WHERE user_id = ? AND deleted = 0`, userID).
		Scan(&u.UserID, &u.Email, &u.Name, &u.APIKey, &enabled, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Enabled = enabled == 1
	return &u, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	u := &model.User{
		UserID:    uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		APIKey:    in.APIKey,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, email, name, api_key, enabled, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, 0, ?, ?)`,
		u.UserID, u.Email, u.Name, u.APIKey, now, now)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, userID string, in UpdateUserInput) (*model.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.APIKey != nil {
		u.APIKey = *in.APIKey
	}
	if in.Enabled != nil {
		u.Enabled = *in.Enabled
	}
	u.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	enabled := 0
	if u.Enabled {
		enabled = 1
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, api_key = ?, enabled = ?, updated_at = ?
		WHERE user_id = ? AND deleted = 0`,
		u.Name, u.APIKey, enabled, u.UpdatedAt, userID)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete soft-deletes a user; history stays queryable for reporting.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET deleted = 1, updated_at = ? WHERE user_id = ? AND deleted = 0`,
		time.Now().UTC().Format(time.RFC3339Nano), userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
