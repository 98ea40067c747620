package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestRedisReportCacheRoundTrip(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("INVOICEFLOW_TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("INVOICEFLOW_TEST_REDIS_ADDR is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewRedisReportCache(addr, os.Getenv("INVOICEFLOW_TEST_REDIS_PASSWORD"), 0)
	defer c.Close()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping redis: %v", err)
	}

	key := "test:" + time.Now().UTC().Format("150405.000000000")
	type payload struct {
		Total float64 `json:"total"`
	}
	if err := c.Set(ctx, key, payload{Total: 42.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	hit, err := c.Get(ctx, key, &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if got.Total != 42.5 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestNoopReportCacheAlwaysMisses(t *testing.T) {
	var c ReportCache = NoopReportCache{}
	if err := c.Set(context.Background(), "k", 1, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var dest int
	hit, err := c.Get(context.Background(), "k", &dest)
	if err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
}
