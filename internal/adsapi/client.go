// Package adsapi is a thin client for the third-party advertising API.
// Retry and backoff are the API provider SDK's concern, not ours; the hub
// only throttles how often this client is invoked.
package adsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const requestTimeout = 30 * time.Second

type Client struct {
	baseURL string
}

func New(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// StartRequest starts every listed campaign under the given account key.
type StartRequest struct {
	APIKey      string   `json:"api_key"`
	CampaignIDs []string `json:"campaign_ids"`
	// ProxyAddr routes the call through the user's proxy when set.
	ProxyAddr string `json:"-"`
}

type StartResponse struct {
	Started int    `json:"started"`
	Message string `json:"message"`
}

// StartCampaigns issues one start call for a user's campaign set.
func (c *Client) StartCampaigns(ctx context.Context, req StartRequest) (*StartResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/campaigns/start", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	client, err := c.httpClient(req.ProxyAddr)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post campaigns/start: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ads api returned %d: %s", resp.StatusCode, snippet)
	}

	var out StartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) httpClient(proxyAddr string) (*http.Client, error) {
	if proxyAddr == "" {
		return &http.Client{Timeout: requestTimeout}, nil
	}
	proxyURL, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("parse proxy address %q: %w", proxyAddr, err)
	}
	return &http.Client{
		Timeout:   requestTimeout,
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
	}, nil
}
