// Package config handles loading and validation of service configuration.
// Supports both development (env vars, .env) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"

	"storefront/internal/catalog"
	"storefront/internal/pricing"
)

// Defaults applied when a key is unset.
const (
	defaultPort            = "8080"
	defaultEnvironment     = "development"
	defaultLogLevel        = "info"
	defaultUpstreamTimeout = 10 * time.Second
	defaultServiceName     = "storefront"
	defaultOTLPEndpoint    = "localhost:4318"
)

// Config holds all service configuration.
// Environment determines whether store credentials load from env vars
// (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	StoreID    string

	// Store credentials and display currency (loaded from secrets in production)
	Store StoreConfig

	UpstreamTimeout  time.Duration
	CategoryCacheTTL time.Duration // zero disables the category snapshot cache
	CategoryFallback catalog.CategoryFallback
	TLSFingerprint   bool
	MinWCVersion     string // empty skips the version comparison

	// OrderEndpoint, when set, receives checkout orders instead of the
	// platform's orders API.
	OrderEndpoint string

	Telemetry TelemetryConfig
}

// StoreConfig contains the WooCommerce store settings.
// In production, this is loaded from Secret Manager as JSON.
type StoreConfig struct {
	URL            string `json:"store_url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	Currency       string `json:"currency,omitempty"`
}

// TelemetryConfig configures the OTLP metrics exporter.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	Headers     string
	Insecure    bool
	ServiceName string
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Outside production a .env file in the working directory is read first;
// variables already set in the environment win over it.
func Load(ctx context.Context) (*Config, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	if envOrDefault("ENVIRONMENT", defaultEnvironment) != "production" {
		if err := loadDotEnv(".env"); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Port:          envOrDefault("PORT", defaultPort),
		Environment:   envOrDefault("ENVIRONMENT", defaultEnvironment),
		LogLevel:      envOrDefault("LOG_LEVEL", defaultLogLevel),
		GCPProject:    os.Getenv("GCP_PROJECT"),
		StoreID:       os.Getenv("STORE_ID"),
		MinWCVersion:  os.Getenv("MIN_WC_VERSION"),
		OrderEndpoint: os.Getenv("ORDER_ENDPOINT"),
		Telemetry: TelemetryConfig{
			Endpoint:    envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", defaultOTLPEndpoint),
			Headers:     os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
			ServiceName: envOrDefault("OTEL_SERVICE_NAME", defaultServiceName),
		},
	}

	var err error
	if cfg.UpstreamTimeout, err = envDuration("UPSTREAM_TIMEOUT", defaultUpstreamTimeout); err != nil {
		return nil, err
	}
	if cfg.CategoryCacheTTL, err = envDuration("CATEGORY_CACHE_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.TLSFingerprint, err = envBool("TLS_FINGERPRINT", false); err != nil {
		return nil, err
	}
	if cfg.Telemetry.Enabled, err = envBool("METRICS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Telemetry.Insecure, err = envBool("OTEL_EXPORTER_OTLP_INSECURE", false); err != nil {
		return nil, err
	}
	if cfg.CategoryFallback, err = catalog.ParseCategoryFallback(os.Getenv("CATEGORY_FALLBACK")); err != nil {
		return nil, fmt.Errorf("CATEGORY_FALLBACK: %w", err)
	}

	// Load store config based on environment
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if cfg.StoreID == "" {
			return nil, fmt.Errorf("STORE_ID required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	cfg.Store.Currency = withDefault(cfg.Store.Currency, pricing.DefaultCurrency)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv reads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("reading %s: %w", path, err)
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Durations are Go duration strings ("10s", "1m").
	var fileConfig struct {
		Port             string      `json:"port"`
		Environment      string      `json:"environment"`
		LogLevel         string      `json:"log_level"`
		StoreID          string      `json:"store_id"`
		Store            StoreConfig `json:"store"`
		UpstreamTimeout  string      `json:"upstream_timeout"`
		CategoryCacheTTL string      `json:"category_cache_ttl"`
		CategoryFallback string      `json:"category_fallback"`
		TLSFingerprint   bool        `json:"tls_fingerprint"`
		MinWCVersion     string      `json:"min_wc_version"`
		OrderEndpoint    string      `json:"order_endpoint"`
		Telemetry        struct {
			Enabled     bool   `json:"enabled"`
			Endpoint    string `json:"endpoint"`
			Headers     string `json:"headers"`
			Insecure    bool   `json:"insecure"`
			ServiceName string `json:"service_name"`
		} `json:"telemetry"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:           withDefault(fileConfig.Port, defaultPort),
		Environment:    withDefault(fileConfig.Environment, defaultEnvironment),
		LogLevel:       withDefault(fileConfig.LogLevel, defaultLogLevel),
		StoreID:        fileConfig.StoreID,
		Store:          fileConfig.Store,
		TLSFingerprint: fileConfig.TLSFingerprint,
		MinWCVersion:   fileConfig.MinWCVersion,
		OrderEndpoint:  fileConfig.OrderEndpoint,
		Telemetry: TelemetryConfig{
			Enabled:     fileConfig.Telemetry.Enabled,
			Endpoint:    withDefault(fileConfig.Telemetry.Endpoint, defaultOTLPEndpoint),
			Headers:     fileConfig.Telemetry.Headers,
			Insecure:    fileConfig.Telemetry.Insecure,
			ServiceName: withDefault(fileConfig.Telemetry.ServiceName, defaultServiceName),
		},
	}

	if cfg.UpstreamTimeout, err = parseDuration("upstream_timeout", fileConfig.UpstreamTimeout, defaultUpstreamTimeout); err != nil {
		return nil, err
	}
	if cfg.CategoryCacheTTL, err = parseDuration("category_cache_ttl", fileConfig.CategoryCacheTTL, 0); err != nil {
		return nil, err
	}
	if cfg.CategoryFallback, err = catalog.ParseCategoryFallback(fileConfig.CategoryFallback); err != nil {
		return nil, fmt.Errorf("category_fallback: %w", err)
	}

	cfg.Store.Currency = withDefault(cfg.Store.Currency, pricing.DefaultCurrency)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// loadFromSecretManager fetches store config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{store_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.StoreID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Store); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadFromEnv reads store config from individual environment variables.
func (c *Config) loadFromEnv() {
	c.Store = StoreConfig{
		URL:            os.Getenv("WC_STORE_URL"),
		ConsumerKey:    os.Getenv("WC_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("WC_CONSUMER_SECRET"),
		Currency:       os.Getenv("STORE_CURRENCY"),
	}
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Store.URL == "" {
		return fmt.Errorf("store_url is required (WC_STORE_URL)")
	}
	if c.Store.ConsumerKey == "" {
		return fmt.Errorf("consumer_key is required (WC_CONSUMER_KEY)")
	}
	if c.Store.ConsumerSecret == "" {
		return fmt.Errorf("consumer_secret is required (WC_CONSUMER_SECRET)")
	}

	u, err := url.Parse(c.Store.URL)
	if err != nil {
		return fmt.Errorf("invalid store_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid store_url %q: want an absolute http(s) URL", c.Store.URL)
	}

	if c.OrderEndpoint != "" {
		if u, err := url.Parse(c.OrderEndpoint); err != nil || u.Host == "" {
			return fmt.Errorf("invalid order endpoint %q: want an absolute URL", c.OrderEndpoint)
		}
	}

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
	}
	if c.CategoryCacheTTL < 0 {
		return fmt.Errorf("category cache ttl must not be negative, got %s", c.CategoryCacheTTL)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.LogLevel)
	}

	return nil
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	return parseDuration(key, os.Getenv(key), defaultVal)
}

// parseDuration accepts Go duration strings and bare integers, read as seconds.
func parseDuration(name, val string, defaultVal time.Duration) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, val, err)
	}
	return d, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: want true or false", key, val)
	}
	return b, nil
}
