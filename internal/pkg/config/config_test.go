package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg := Load()

	if cfg.Port != "8080" || !cfg.IsDevelopment() {
		t.Errorf("unexpected server defaults: port=%s env=%s", cfg.Port, cfg.Env)
	}
	if cfg.MarketAPI.Timeout != 30*time.Second || cfg.MarketAPI.AnalyticsTimeout != 60*time.Second {
		t.Errorf("unexpected market api timeouts: %+v", cfg.MarketAPI)
	}
	if cfg.Session.TTL != 24*time.Hour || cfg.Session.CookieName != "mp_session" {
		t.Errorf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Audit.Workers != 4 {
		t.Errorf("expected 4 audit workers, got %d", cfg.Audit.Workers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("MARKET_API_URL", "https://market.example/api")
	t.Setenv("MARKET_API_MAX_RETRY_WAIT", "2s")
	t.Setenv("ENV", "production")

	cfg := Load()

	if cfg.MarketAPI.BaseURL != "https://market.example/api" || cfg.MarketAPI.MaxRetryWait != 2*time.Second {
		t.Errorf("overrides not applied: %+v", cfg.MarketAPI)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production environment")
	}
}

func TestLoad_MissingSecretPanics(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	os.Unsetenv("SESSION_SECRET")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic without SESSION_SECRET")
		}
	}()
	Load()
}
