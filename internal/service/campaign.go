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

type CampaignService struct {
	db *sql.DB
}

func NewCampaignService(db *sql.DB) *CampaignService {
	return &CampaignService{db: db}
}

type CreateCampaignInput struct {
	Name       string `json:"name"`
	DailyLimit int    `json:"daily_limit"`
}

type UpdateCampaignInput struct {
	Name       *string `json:"name"`
	DailyLimit *int    `json:"daily_limit"`
	Enabled    *bool   `json:"enabled"`
}

func (s *CampaignService) List(ctx context.Context, userID string) ([]model.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT campaign_id, user_id, name, daily_limit, enabled, created_at, updated_at
		FROM campaigns WHERE user_id = ? AND deleted = 0 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Campaign
	for rows.Next() {
		var c model.Campaign
		var enabled int
		if err := rows.Scan(&c.CampaignID, &c.UserID, &c.Name, &c.DailyLimit, &enabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Enabled = enabled == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CampaignService) Create(ctx context.Context, userID string, in CreateCampaignInput) (*model.Campaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	// Reject campaigns for unknown/deleted users up front.
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE user_id = ? AND deleted = 0`, userID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrUserNotFound
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	c := &model.Campaign{
		CampaignID: uuid.NewString(),
		UserID:     userID,
		Name:       name,
		DailyLimit: in.DailyLimit,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campaigns (campaign_id, user_id, name, daily_limit, enabled, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, 0, ?, ?)`,
		c.CampaignID, c.UserID, c.Name, c.DailyLimit, now, now)
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return c, nil
}

func (s *CampaignService) Update(ctx context.Context, campaignID string, in UpdateCampaignInput) (*model.Campaign, error) {
	var c model.Campaign
	var enabled int
	err := s.db.QueryRowContext(ctx, `
		SELECT campaign_id, user_id, name, daily_limit, enabled, created_at, updated_at
		FROM campaigns WHERE campaign_id = ? AND deleted = 0`, campaignID).
		Scan(&c.CampaignID, &c.UserID, &c.Name, &c.DailyLimit, &enabled, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Enabled = enabled == 1

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.DailyLimit != nil {
		c.DailyLimit = *in.DailyLimit
	}
	if in.Enabled != nil {
		c.Enabled = *in.Enabled
	}
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	enabledInt := 0
	if c.Enabled {
		enabledInt = 1
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE campaigns SET name = ?, daily_limit = ?, enabled = ?, updated_at = ?
		WHERE campaign_id = ? AND deleted = 0`,
		c.Name, c.DailyLimit, enabledInt, c.UpdatedAt, campaignID)
	if err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	return &c, nil
}

func (s *CampaignService) Delete(ctx context.Context, campaignID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE campaigns SET deleted = 1, updated_at = ? WHERE campaign_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), campaignID)
	return err
}
