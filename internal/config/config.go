package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultTimezone = "Asia/Kolkata"

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	UpstreamURL           string
	UpstreamToken         string
	SnapshotPath          string
	Timezone              string
	ReportCacheTTLSeconds int
	StoreGSTIN            string
	AuthSecret            string
	AccessTokenTTLMinutes int
}

// Load reads configuration from the environment. Unset or invalid values fall
// back to defaults; auth secrets have none.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REPORT_TIMEZONE", defaultTimezone)
	v.SetDefault("REPORT_CACHE_TTL_SECONDS", 30)
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 480)

	cacheTTL := v.GetInt("REPORT_CACHE_TTL_SECONDS")
	if cacheTTL < 1 {
		cacheTTL = 30
	}
	tokenTTL := v.GetInt("ACCESS_TOKEN_TTL_MINUTES")
	if tokenTTL < 1 {
		tokenTTL = 480
	}

	return Config{
		Port:                  nonEmpty(v.GetString("PORT"), "8080"),
		AllowedOrigin:         nonEmpty(v.GetString("ALLOWED_ORIGIN"), "http://127.0.0.1:3000"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		UpstreamURL:           strings.TrimRight(strings.TrimSpace(v.GetString("UPSTREAM_URL")), "/"),
		UpstreamToken:         strings.TrimSpace(v.GetString("UPSTREAM_TOKEN")),
		SnapshotPath:          strings.TrimSpace(v.GetString("SNAPSHOT_PATH")),
		Timezone:              nonEmpty(strings.TrimSpace(v.GetString("REPORT_TIMEZONE")), defaultTimezone),
		ReportCacheTTLSeconds: cacheTTL,
		StoreGSTIN:            strings.ToUpper(strings.TrimSpace(v.GetString("STORE_GSTIN"))),
		AuthSecret:            strings.TrimSpace(v.GetString("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Location resolves the reporting zone, falling back to UTC when the zone
// database does not know it.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

func nonEmpty(val string, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
