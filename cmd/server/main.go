package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoiceflow/backend/internal/aggregate"
	"invoiceflow/backend/internal/cache"
	"invoiceflow/backend/internal/config"
	"invoiceflow/backend/internal/domain"
	"invoiceflow/backend/internal/httpapi"
	"invoiceflow/backend/internal/service"
	"invoiceflow/backend/internal/store"
	"invoiceflow/backend/internal/store/memory"
	pgstore "invoiceflow/backend/internal/store/postgres"
	"invoiceflow/backend/internal/store/upstream"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, users, closers, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("repository unavailable: %v", err)
	}

	reportCache := cache.ReportCache(cache.NoopReportCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
			_ = redisCache.Close()
		} else {
			reportCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	svc := service.New(repo, reportCache, service.Options{
		Location:    cfg.Location(),
		CacheTTL:    cfg.ReportCacheTTL(),
		SellerGSTIN: cfg.StoreGSTIN,
	})
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, users)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("InvoiceFlow reports listening on %s (zone %s)", cfg.Address(), svc.Location())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// openRepository picks the data source: postgres, then the REST backend, then
// a snapshot file, then the demo seed. Only postgres persists logins; the
// other sources keep them in memory.
func openRepository(ctx context.Context, cfg config.Config) (store.Repository, httpapi.UserStore, []func() error, error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			log.Printf("postgres migrate skipped: %v", err)
		}
		log.Println("repository: postgres")
		return pg, pg, []func() error{pg.Close}, nil

	case cfg.UpstreamURL != "":
		up := upstream.New(cfg.UpstreamURL, cfg.UpstreamToken)
		if err := up.Ping(ctx); err != nil {
			log.Printf("upstream %s not healthy yet: %v", cfg.UpstreamURL, err)
		}
		log.Printf("repository: upstream %s", cfg.UpstreamURL)
		return up, memory.New(domain.Snapshot{}), nil, nil

	case cfg.SnapshotPath != "":
		mem, err := memory.LoadFile(cfg.SnapshotPath)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Printf("repository: snapshot %s", cfg.SnapshotPath)
		return mem, mem, nil, nil

	default:
		mem := memory.NewSeeded()
		log.Println("repository: in-memory demo data")
		return mem, mem, nil, nil
	}
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.StoreGSTIN != "" && aggregate.StateCode(cfg.StoreGSTIN) == "" {
		return fmt.Errorf("STORE_GSTIN must start with a two-digit state code")
	}
	if cfg.UpstreamURL != "" && cfg.UpstreamToken == "" {
		log.Println("WARNING: UPSTREAM_URL is set without UPSTREAM_TOKEN; protected backend routes will reject requests")
	}
	return nil
}
