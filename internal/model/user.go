package model

// User is a panel tenant: an advertiser account with its own API
// credentials, campaigns and proxies.
type User struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	APIKey    string `json:"api_key,omitempty"`
	Enabled   bool   `json:"enabled"`
	Deleted   bool   `json:"-"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
