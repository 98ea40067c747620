package config

import (
	"testing"
	"time"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("UPSTREAM_TOKEN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.UpstreamToken != "" {
		t.Fatalf("expected empty UPSTREAM_TOKEN when unset, got %q", cfg.UpstreamToken)
	}
}

func TestLoadFallsBackOnInvalidNumbers(t *testing.T) {
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "soon")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "-5")
	t.Setenv("PORT", "")

	cfg := Load()
	if cfg.ReportCacheTTLSeconds != 30 {
		t.Fatalf("expected cache ttl fallback 30, got %d", cfg.ReportCacheTTLSeconds)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected token ttl fallback 480, got %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected default address :8080, got %q", cfg.Address())
	}
}

func TestLoadReadsReportingSettings(t *testing.T) {
	t.Setenv("UPSTREAM_URL", " http://backend.local:8000/ ")
	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "90")
	t.Setenv("STORE_GSTIN", " 29abcde1234f1z5 ")

	cfg := Load()
	if cfg.UpstreamURL != "http://backend.local:8000" {
		t.Fatalf("unexpected upstream url %q", cfg.UpstreamURL)
	}
	if cfg.ReportCacheTTL() != 90*time.Second {
		t.Fatalf("unexpected cache ttl %s", cfg.ReportCacheTTL())
	}
	if cfg.StoreGSTIN != "29ABCDE1234F1Z5" {
		t.Fatalf("unexpected gstin %q", cfg.StoreGSTIN)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %s", cfg.Location())
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{Timezone: "Mars/Olympus_Mons"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", cfg.Location())
	}
}
