package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"route-sequencer-service/internal/domain"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration assembled from the environment
// and an optional YAML tuning file.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	SeedPath    string

	CacheTTL       time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	Sequencer SequencerConfig
}

// SequencerConfig tunes the route sequencer. It may be loaded from YAML.
type SequencerConfig struct {
	// MaxSwaps caps accepted 2-opt moves per call; 0 uses the engine default,
	// negative disables the cap.
	MaxSwaps int `yaml:"max_swaps"`
	// DefaultStart overrides the fallback start when no depot or driver position is known.
	DefaultStart *struct {
		Lat float64 `yaml:"lat"`
		Lng float64 `yaml:"lng"`
	} `yaml:"default_start"`
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads the environment (after .env) plus the optional YAML file named by SEQUENCER_CONFIG.
func Load() (*Config, error) {
	LoadDotEnv()

	cfg := &Config{
		Port:        Get("PORT", "8080"),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisURL:    Get("REDIS_URL", ""),
		SeedPath:    Get("SEED_PATH", "data/seeds/orders.json"),
	}

	var err error
	if cfg.CacheTTL, err = time.ParseDuration(Get("SEQUENCE_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("load config: SEQUENCE_CACHE_TTL: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(Get("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("load config: RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(Get("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("load config: RATE_LIMIT_BURST: %w", err)
	}

	if path := Get("SEQUENCER_CONFIG", ""); path != "" {
		sc, err := LoadSequencerFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg.Sequencer = *sc
	}

	// The environment wins over the file.
	if v := Get("SEQUENCER_MAX_SWAPS", ""); v != "" {
		if cfg.Sequencer.MaxSwaps, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("load config: SEQUENCER_MAX_SWAPS: %w", err)
		}
	}

	return cfg, nil
}

// LoadSequencerFile parses a YAML sequencer tuning file.
func LoadSequencerFile(path string) (*SequencerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequencer config %q: %w", path, err)
	}

	var sc SequencerConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse sequencer config %q: %w", path, err)
	}

	if sc.DefaultStart != nil {
		lat, lng := sc.DefaultStart.Lat, sc.DefaultStart.Lng
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return nil, errors.New("sequencer config: default_start out of range")
		}
	}

	return &sc, nil
}

// Fallback returns the configured fallback start, or nil to use the built-in default.
func (s SequencerConfig) Fallback() *domain.Coordinates {
	if s.DefaultStart == nil {
		return nil
	}
	return &domain.Coordinates{Lat: s.DefaultStart.Lat, Lon: s.DefaultStart.Lng}
}
