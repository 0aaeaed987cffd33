package model

// Campaign groups a user's affiliate links. A campaign takes part in
// one-click start only while it is enabled and not deleted.
type Campaign struct {
	CampaignID string `json:"campaign_id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	DailyLimit int    `json:"daily_limit"`
	Enabled    bool   `json:"enabled"`
	Deleted    bool   `json:"-"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Affiliate is a single offer link inside a campaign.
type Affiliate struct {
	AffiliateID string `json:"affiliate_id"`
	CampaignID  string `json:"campaign_id"`
	Name        string `json:"name"`
	OfferURL    string `json:"offer_url"`
	Enabled     bool   `json:"enabled"`
	Deleted     bool   `json:"-"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
