package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/launchpanel/hub/internal/adsapi"
	"github.com/launchpanel/hub/internal/model"
	"github.com/launchpanel/hub/internal/ratelimit"
)

// AdsThrottle carries the token bucket parameters for outbound advertising
// API calls, filled from config and overridable per deployment.
type AdsThrottle struct {
	Scope   string
	RPS     float64
	Burst   float64
	MaxWait time.Duration
}

// NewAdsStartTask builds the production one-click task: gate on the shared
// token bucket, then start every runnable campaign of the user through its
// proxy. Rate-limit exhaustion is an ordinary task failure for that user.
func NewAdsStartTask(db *sql.DB, registry *ratelimit.Registry, client *adsapi.Client, throttle AdsThrottle) TaskFunc {
	return func(ctx context.Context, user *model.User) (string, error) {
		if user.APIKey == "" {
			return "", fmt.Errorf("user has no advertising API key")
		}

		campaignIDs, err := runnableCampaignIDs(ctx, db, user.UserID)
		if err != nil {
			return "", err
		}
		if len(campaignIDs) == 0 {
			return "", fmt.Errorf("no runnable campaigns")
		}

		ok := registry.Acquire(ctx, ratelimit.Request{
			Scope:   throttle.Scope,
			RPS:     throttle.RPS,
			Burst:   throttle.Burst,
			MaxWait: throttle.MaxWait,
		})
		if !ok {
			return "", fmt.Errorf("rate limit wait budget exhausted for scope %q", throttle.Scope)
		}

		proxyAddr, err := pickProxy(ctx, db, user.UserID)
		if err != nil {
			return "", err
		}

		resp, err := client.StartCampaigns(ctx, adsapi.StartRequest{
			APIKey:      user.APIKey,
			CampaignIDs: campaignIDs,
			ProxyAddr:   proxyAddr,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("started %d campaigns: %s", resp.Started, resp.Message), nil
	}
}

func runnableCampaignIDs(ctx context.Context, db *sql.DB, userID string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.campaign_id FROM campaigns c
		WHERE c.user_id = ? AND c.deleted = 0 AND c.enabled = 1
		  AND EXISTS (
			SELECT 1 FROM affiliates a
			WHERE a.campaign_id = c.campaign_id
			  AND a.deleted = 0 AND a.enabled = 1 AND a.offer_url <> ''
		  )
		ORDER BY c.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("select runnable campaigns: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// pickProxy returns the user's first enabled proxy, or empty for a direct
// connection.
func pickProxy(ctx context.Context, db *sql.DB, userID string) (string, error) {
	var addr string
	err := db.QueryRowContext(ctx, `
		SELECT address FROM proxies
		WHERE user_id = ? AND deleted = 0 AND enabled = 1
		ORDER BY created_at LIMIT 1`, userID).Scan(&addr)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select proxy: %w", err)
	}
	return addr, nil
}
