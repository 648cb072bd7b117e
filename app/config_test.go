package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "WEB_ORIGIN", "RP_ID", "RP_ORIGINS", "SESSION_TTL", "OTP_TTL"} {
		t.Setenv(k, "")
	}
	cfg := loadConfig()
	if cfg.Env != "development" || cfg.Port != "3001" {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %v", cfg.SessionTTL)
	}
	// RP origins default to the web origin.
	if len(cfg.RPOrigins) != 1 || cfg.RPOrigins[0] != cfg.WebOrigin {
		t.Errorf("rp origins = %v", cfg.RPOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("RP_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := loadConfig()
	if cfg.Env != "production" || cfg.Port != "8080" {
		t.Errorf("overrides: %+v", cfg)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("session ttl = %v", cfg.SessionTTL)
	}
	if len(cfg.RPOrigins) != 2 || cfg.RPOrigins[1] != "https://b.example.com" {
		t.Errorf("rp origins = %v", cfg.RPOrigins)
	}
}

func TestGetenvDuration(t *testing.T) {
	t.Setenv("X_TTL", "90s")
	if d := getenvDuration("X_TTL", time.Minute); d != 90*time.Second {
		t.Errorf("parsed = %v", d)
	}
	t.Setenv("X_TTL", "not-a-duration")
	if d := getenvDuration("X_TTL", time.Minute); d != time.Minute {
		t.Errorf("fallback = %v", d)
	}
}
