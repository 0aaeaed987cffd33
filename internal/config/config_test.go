package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("PANEL_CONFIG_FILE")
	os.Unsetenv("PANEL_PORT")
	os.Unsetenv("PANEL_ADS_RATE_RPS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("default port: got %q", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("default driver: got %q", cfg.DBDriver)
	}
	if cfg.AdsRateRPS != 2 || cfg.AdsRateBurst != 5 || cfg.AdsRateMaxWaitMs != 30000 {
		t.Errorf("default throttle: got rps=%v burst=%v wait=%v",
			cfg.AdsRateRPS, cfg.AdsRateBurst, cfg.AdsRateMaxWaitMs)
	}
}

func TestLoadEnvOverridesYAMLFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "panel.yaml")
	yaml := `
port: "9000"
db_driver: postgres
internal_secret: from-file
ads_rate_rps: 10
`
	if err := os.WriteFile(file, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("PANEL_CONFIG_FILE", file)
	t.Setenv("PANEL_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("env should override file, got port %q", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("file value lost, got driver %q", cfg.DBDriver)
	}
	if cfg.InternalSecret != "from-file" {
		t.Errorf("file secret lost, got %q", cfg.InternalSecret)
	}
	if cfg.AdsRateRPS != 10 {
		t.Errorf("file rps lost, got %v", cfg.AdsRateRPS)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(file, []byte("port: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PANEL_CONFIG_FILE", file)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}
