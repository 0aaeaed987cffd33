package model

// Proxy is an outbound proxy assigned to a user for advertising API calls.
type Proxy struct {
	ProxyID   string `json:"proxy_id"`
	UserID    string `json:"user_id"`
	Address   string `json:"address"` // scheme://host:port
	Enabled   bool   `json:"enabled"`
	Deleted   bool   `json:"-"`
	CreatedAt string `json:"created_at"`
}
