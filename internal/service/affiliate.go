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

type AffiliateService struct {
	db *sql.DB
}

func NewAffiliateService(db *sql.DB) *AffiliateService {
	return &AffiliateService{db: db}
}

type CreateAffiliateInput struct {
	Name     string `json:"name"`
	OfferURL string `json:"offer_url"`
}

type UpdateAffiliateInput struct {
	Name     *string `json:"name"`
	OfferURL *string `json:"offer_url"`
	Enabled  *bool   `json:"enabled"`
}

func (s *AffiliateService) List(ctx context.Context, campaignID string) ([]model.Affiliate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT affiliate_id, campaign_id, name, offer_url, enabled, created_at, updated_at
		FROM affiliates WHERE campaign_id = ? AND deleted = 0 ORDER BY created_at`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Affiliate
	for rows.Next() {
		var a model.Affiliate
		var enabled int
		if err := rows.Scan(&a.AffiliateID, &a.CampaignID, &a.Name, &a.OfferURL, &enabled, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Enabled = enabled == 1
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *AffiliateService) Create(ctx context.Context, campaignID string, in CreateAffiliateInput) (*model.Affiliate, error) {
	offerURL := strings.TrimSpace(in.OfferURL)
	if offerURL == "" {
		return nil, fmt.Errorf("offer_url is required")
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM campaigns WHERE campaign_id = ? AND deleted = 0`, campaignID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("campaign not found")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	a := &model.Affiliate{
		AffiliateID: uuid.NewString(),
		CampaignID:  campaignID,
		Name:        strings.TrimSpace(in.Name),
		OfferURL:    offerURL,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO affiliates (affiliate_id, campaign_id, name, offer_url, enabled, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, 0, ?, ?)`,
		a.AffiliateID, a.CampaignID, a.Name, a.OfferURL, now, now)
	if err != nil {
		return nil, fmt.Errorf("create affiliate: %w", err)
	}
	return a, nil
}

func (s *AffiliateService) Update(ctx context.Context, affiliateID string, in UpdateAffiliateInput) (*model.Affiliate, error) {
	var a model.Affiliate
	var enabled int
	err := s.db.QueryRowContext(ctx, `
		SELECT affiliate_id, campaign_id, name, offer_url, enabled, created_at, updated_at
		FROM affiliates WHERE affiliate_id = ? AND deleted = 0`, affiliateID).
		Scan(&a.AffiliateID, &a.CampaignID, &a.Name, &a.OfferURL, &enabled, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Enabled = enabled == 1

	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.OfferURL != nil {
		a.OfferURL = *in.OfferURL
	}
	if in.Enabled != nil {
		a.Enabled = *in.Enabled
	}
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	enabledInt := 0
	if a.Enabled {
		enabledInt = 1
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE affiliates SET name = ?, offer_url = ?, enabled = ?, updated_at = ?
		WHERE affiliate_id = ? AND deleted = 0`,
		a.Name, a.OfferURL, enabledInt, a.UpdatedAt, affiliateID)
	if err != nil {
		return nil, fmt.Errorf("update affiliate: %w", err)
	}
	return &a, nil
}

func (s *AffiliateService) Delete(ctx context.Context, affiliateID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE affiliates SET deleted = 1, updated_at = ? WHERE affiliate_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), affiliateID)
	return err
}
