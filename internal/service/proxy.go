package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/launchpanel/hub/internal/model"
)

type ProxyService struct {
	db *sql.DB
}

func NewProxyService(db *sql.DB) *ProxyService {
	return &ProxyService{db: db}
}

type CreateProxyInput struct {
	Address string `json:"address"`
}

func (s *ProxyService) List(ctx context.Context, userID string) ([]model.Proxy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT proxy_id, user_id, address, enabled, created_at
		FROM proxies WHERE user_id = ? AND deleted = 0 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Proxy
	for rows.Next() {
		var p model.Proxy
		var enabled int
		if err := rows.Scan(&p.ProxyID, &p.UserID, &p.Address, &enabled, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Enabled = enabled == 1
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ProxyService) Create(ctx context.Context, userID string, in CreateProxyInput) (*model.Proxy, error) {
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE user_id = ? AND deleted = 0`, userID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrUserNotFound
	}

	p := &model.Proxy{
		ProxyID:   uuid.NewString(),
		UserID:    userID,
		Address:   address,
		Enabled:   true,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO proxies (proxy_id, user_id, address, enabled, deleted, created_at)
		VALUES (?, ?, ?, 1, 0, ?)`,
		p.ProxyID, p.UserID, p.Address, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create proxy: %w", err)
	}
	return p, nil
}

func (s *ProxyService) Delete(ctx context.Context, proxyID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE proxies SET deleted = 1 WHERE proxy_id = ?`, proxyID)
	return err
}
