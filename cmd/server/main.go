package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"route-sequencer-service/internal/adapters/cache"
	"route-sequencer-service/internal/adapters/repositories"
	"route-sequencer-service/internal/api"
	"route-sequencer-service/internal/api/handlers"
	"route-sequencer-service/internal/config"
	"route-sequencer-service/internal/platform/db"
	"route-sequencer-service/internal/platform/metrics"
	"syscall"
	"time"
)

// main is the application composition root.
// It wires concrete adapters (PostgreSQL or memory, Redis) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterDefault()

	routes := &handlers.RouteHandler{
		MaxSwaps:      cfg.Sequencer.MaxSwaps,
		FallbackStart: cfg.Sequencer.Fallback(),
	}

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		repo := repositories.NewPostgresOrderRepository(conn)
		routes.Repo, routes.Locations, routes.Store = repo, repo, repo
		log.Printf("orders backend=postgres")
	} else {
		repo, err := memoryRepository(cfg.SeedPath)
		if err != nil {
			log.Fatal(err)
		}
		routes.Repo, routes.Locations, routes.Store = repo, repo, repo
		log.Printf("orders backend=memory seed=%s", cfg.SeedPath)
	}

	// Sequence cache is optional; a Redis outage at startup only disables it.
	if cfg.RedisURL != "" {
		c, err := cache.NewRedisSequenceCacheFromURL(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Printf("sequence cache disabled: %v", err)
		} else {
			defer c.Close()
			routes.Cache = c
			log.Printf("sequence cache backend=redis ttl=%s", cfg.CacheTTL)
		}
	}

	limiter := api.NewTenantLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := api.NewRouter(routes, limiter)

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown failed: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// memoryRepository loads the seed file when it exists; otherwise the repository starts empty.
func memoryRepository(seedPath string) (*repositories.MemoryRepository, error) {
	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		return repositories.NewMemoryRepository(), nil
	}

	seed, err := repositories.ReadSeed(seedPath)
	if err != nil {
		return nil, err
	}
	return repositories.NewMemoryRepositoryFromSeed(seed), nil
}
