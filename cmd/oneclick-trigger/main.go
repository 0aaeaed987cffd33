// Command oneclick-trigger fires one one-click batch pass against the hub.
// It is designed to be run from cron: an overlapping invocation detects the
// live lock and exits cleanly without calling the hub.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/launchpanel/hub/internal/lockfile"
)

type triggerConfig struct {
	hubURL   string
	secret   string
	userID   string
	lockPath string
	lockTTL  time.Duration
	timeout  time.Duration
}

func loadTriggerConfig() triggerConfig {
	cfg := triggerConfig{
		hubURL:   getEnv("PANEL_HUB_URL", "http://127.0.0.1:8080"),
		secret:   os.Getenv("PANEL_INTERNAL_SECRET"),
		userID:   os.Getenv("PANEL_ONECLICK_USER_ID"),
		lockPath: getEnv("PANEL_ONECLICK_LOCK_PATH", "/tmp/launchpanel/oneclick.lock"),
		lockTTL:  15 * time.Minute,
		timeout:  10 * time.Minute,
	}
	if v := os.Getenv("PANEL_ONECLICK_LOCK_TTL_S"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			cfg.lockTTL = time.Duration(s) * time.Second
		}
	}
	if v := os.Getenv("PANEL_ONECLICK_TIMEOUT_S"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			cfg.timeout = time.Duration(s) * time.Second
		}
	}
	return cfg
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := loadTriggerConfig()
	if cfg.secret == "" {
		log.Println("PANEL_INTERNAL_SECRET is not set")
		return 1
	}

	lock, err := lockfile.Acquire(cfg.lockPath, cfg.lockTTL)
	if errors.Is(err, lockfile.ErrHeld) {
		log.Println("previous one-click run still in progress, skipping")
		return 0
	}
	if err != nil {
		log.Printf("acquire lock: %v", err)
		return 1
	}
	defer lock.Release()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	report, err := trigger(ctx, cfg)
	if err != nil {
		log.Printf("one-click run failed: %v", err)
		return 1
	}
	log.Printf("one-click run done: %s", report)
	return 0
}

func trigger(ctx context.Context, cfg triggerConfig) (string, error) {
	body := []byte("{}")
	if cfg.userID != "" {
		body = []byte(fmt.Sprintf(`{"user_id":%q}`, cfg.userID))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.hubURL+"/internal/oneclick/run", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hub-Auth", cfg.secret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call hub: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hub returned %d: %s", resp.StatusCode, data)
	}
	return string(data), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
