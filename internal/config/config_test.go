package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storefront/internal/catalog"
)

// configKeys are every variable Load reads.
var configKeys = []string{
	"CONFIG_FILE", "PORT", "ENVIRONMENT", "LOG_LEVEL", "STORE_ID", "GCP_PROJECT",
	"WC_STORE_URL", "WC_CONSUMER_KEY", "WC_CONSUMER_SECRET", "STORE_CURRENCY",
	"UPSTREAM_TIMEOUT", "CATEGORY_CACHE_TTL", "CATEGORY_FALLBACK",
	"TLS_FINGERPRINT", "MIN_WC_VERSION", "ORDER_ENDPOINT", "METRICS_ENABLED",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS",
	"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME",
}

// cleanEnv unsets every config key for the duration of the test and moves
// into an empty directory so no stray .env is picked up.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func setStoreEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WC_STORE_URL", "https://shop.example.com")
	t.Setenv("WC_CONSUMER_KEY", "ck_test123")
	t.Setenv("WC_CONSUMER_SECRET", "cs_test456")
}

func TestLoadFromEnv(t *testing.T) {
	cleanEnv(t)
	setStoreEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_CURRENCY", "EUR")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("CATEGORY_CACHE_TTL", "60")
	t.Setenv("CATEGORY_FALLBACK", "passthrough")
	t.Setenv("TLS_FINGERPRINT", "true")
	t.Setenv("MIN_WC_VERSION", "8.0.0")
	t.Setenv("ORDER_ENDPOINT", "https://orders.example.com/api/orders")
	t.Setenv("METRICS_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Verify server settings
	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want development", cfg.Environment)
	}

	// Verify store config
	if cfg.Store.URL != "https://shop.example.com" {
		t.Errorf("Store.URL = %s, want https://shop.example.com", cfg.Store.URL)
	}
	if cfg.Store.ConsumerKey != "ck_test123" || cfg.Store.ConsumerSecret != "cs_test456" {
		t.Errorf("credentials = %q/%q", cfg.Store.ConsumerKey, cfg.Store.ConsumerSecret)
	}
	if cfg.Store.Currency != "EUR" {
		t.Errorf("Currency = %s, want EUR", cfg.Store.Currency)
	}

	if cfg.UpstreamTimeout != 5*time.Second {
		t.Errorf("UpstreamTimeout = %s, want 5s", cfg.UpstreamTimeout)
	}
	if cfg.CategoryCacheTTL != time.Minute {
		t.Errorf("CategoryCacheTTL = %s, want 1m (bare integers are seconds)", cfg.CategoryCacheTTL)
	}
	if cfg.CategoryFallback != catalog.FallbackPassthrough {
		t.Errorf("CategoryFallback = %s, want passthrough", cfg.CategoryFallback)
	}
	if !cfg.TLSFingerprint || cfg.MinWCVersion != "8.0.0" {
		t.Errorf("TLSFingerprint = %v, MinWCVersion = %q", cfg.TLSFingerprint, cfg.MinWCVersion)
	}
	if cfg.OrderEndpoint != "https://orders.example.com/api/orders" {
		t.Errorf("OrderEndpoint = %s", cfg.OrderEndpoint)
	}

	tel := cfg.Telemetry
	if !tel.Enabled || !tel.Insecure || tel.Endpoint != "collector:4318" || tel.ServiceName != "storefront" {
		t.Errorf("Telemetry = %+v", tel)
	}
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)
	setStoreEnv(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8080" || cfg.LogLevel != "info" {
		t.Errorf("Port = %s, LogLevel = %s", cfg.Port, cfg.LogLevel)
	}
	if cfg.Store.Currency != "MRU" {
		t.Errorf("Currency = %s, want MRU", cfg.Store.Currency)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout = %s, want 10s", cfg.UpstreamTimeout)
	}
	if cfg.CategoryCacheTTL != 0 {
		t.Errorf("CategoryCacheTTL = %s, want 0 (cache disabled)", cfg.CategoryCacheTTL)
	}
	if cfg.CategoryFallback != catalog.FallbackDrop {
		t.Errorf("CategoryFallback = %s, want drop", cfg.CategoryFallback)
	}
	if cfg.TLSFingerprint || cfg.Telemetry.Enabled || cfg.OrderEndpoint != "" {
		t.Errorf("optional features should be off: %+v", cfg)
	}
	if cfg.Telemetry.Endpoint != "localhost:4318" {
		t.Errorf("Telemetry.Endpoint = %s, want localhost:4318", cfg.Telemetry.Endpoint)
	}
}

func TestLoadDotEnv(t *testing.T) {
	cleanEnv(t)

	dotenv := strings.Join([]string{
		"WC_STORE_URL=https://dotenv.example.com",
		"WC_CONSUMER_KEY=ck_dotenv",
		"WC_CONSUMER_SECRET=cs_dotenv",
		"PORT=7070",
	}, "\n")
	if err := os.WriteFile(".env", []byte(dotenv), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	// Set variables win over the file.
	t.Setenv("PORT", "9191")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.URL != "https://dotenv.example.com" || cfg.Store.ConsumerKey != "ck_dotenv" {
		t.Errorf("Store = %+v, want values from .env", cfg.Store)
	}
	if cfg.Port != "9191" {
		t.Errorf("Port = %s, want 9191 from the environment", cfg.Port)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		wantErr string
	}{
		{
			name: "missing store url",
			setup: func(t *testing.T) {
				t.Setenv("WC_CONSUMER_KEY", "key")
				t.Setenv("WC_CONSUMER_SECRET", "secret")
			},
			wantErr: "store_url is required",
		},
		{
			name: "missing consumer key",
			setup: func(t *testing.T) {
				t.Setenv("WC_STORE_URL", "https://shop.com")
				t.Setenv("WC_CONSUMER_SECRET", "secret")
			},
			wantErr: "consumer_key is required",
		},
		{
			name: "missing consumer secret",
			setup: func(t *testing.T) {
				t.Setenv("WC_STORE_URL", "https://shop.com")
				t.Setenv("WC_CONSUMER_KEY", "key")
			},
			wantErr: "consumer_secret is required",
		},
		{
			name: "production without project",
			setup: func(t *testing.T) {
				t.Setenv("ENVIRONMENT", "production")
				t.Setenv("STORE_ID", "boutique")
			},
			wantErr: "GCP_PROJECT required",
		},
		{
			name: "production without store id",
			setup: func(t *testing.T) {
				t.Setenv("ENVIRONMENT", "production")
				t.Setenv("GCP_PROJECT", "my-project")
			},
			wantErr: "STORE_ID required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			tt.setup(t)

			_, err := Load(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr string
	}{
		{"WC_STORE_URL", "shop.example.com", "invalid store_url"},
		{"WC_STORE_URL", "ftp://shop.example.com", "invalid store_url"},
		{"UPSTREAM_TIMEOUT", "soon", "invalid UPSTREAM_TIMEOUT"},
		{"UPSTREAM_TIMEOUT", "0", "upstream timeout must be positive"},
		{"CATEGORY_CACHE_TTL", "-5s", "must not be negative"},
		{"CATEGORY_FALLBACK", "guess", "CATEGORY_FALLBACK"},
		{"TLS_FINGERPRINT", "chrome", "invalid TLS_FINGERPRINT"},
		{"METRICS_ENABLED", "yes", "invalid METRICS_ENABLED"},
		{"ORDER_ENDPOINT", "/api/orders", "invalid order endpoint"},
		{"LOG_LEVEL", "verbose", "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cleanEnv(t)
			setStoreEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "custom")
	if got := envOrDefault("TEST_ENV_VAR", "default"); got != "custom" {
		t.Errorf("envOrDefault with set var = %q, want custom", got)
	}

	os.Unsetenv("TEST_ENV_VAR_UNSET")
	if got := envOrDefault("TEST_ENV_VAR_UNSET", "default"); got != "default" {
		t.Errorf("envOrDefault with unset var = %q, want default", got)
	}
}

func TestWithDefault(t *testing.T) {
	if got := withDefault("value", "default"); got != "value" {
		t.Errorf("withDefault(value, default) = %q, want value", got)
	}
	if got := withDefault("", "default"); got != "default" {
		t.Errorf("withDefault('', default) = %q, want default", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 3 * time.Second, false},
		{"30", 30 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{" 250ms ", 250 * time.Millisecond, false},
		{"later", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration("timeout", tt.in, 3*time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	cleanEnv(t)

	content := `{
		"port": "9090",
		"environment": "test",
		"log_level": "debug",
		"store_id": "boutique",
		"store": {
			"store_url": "https://file-shop.com",
			"consumer_key": "ck_file",
			"consumer_secret": "cs_file"
		},
		"upstream_timeout": "15s",
		"category_cache_ttl": "2m",
		"category_fallback": "passthrough",
		"telemetry": {"enabled": true, "headers": "signoz-ingestion-key=abc"}
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.StoreID != "boutique" {
		t.Errorf("StoreID = %s, want boutique", cfg.StoreID)
	}
	if cfg.Store.URL != "https://file-shop.com" {
		t.Errorf("Store.URL = %s, want https://file-shop.com", cfg.Store.URL)
	}
	if cfg.Store.Currency != "MRU" {
		t.Errorf("Currency = %s, want MRU default", cfg.Store.Currency)
	}
	if cfg.UpstreamTimeout != 15*time.Second || cfg.CategoryCacheTTL != 2*time.Minute {
		t.Errorf("durations = %s, %s", cfg.UpstreamTimeout, cfg.CategoryCacheTTL)
	}
	if cfg.CategoryFallback != catalog.FallbackPassthrough {
		t.Errorf("CategoryFallback = %s, want passthrough", cfg.CategoryFallback)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Headers != "signoz-ingestion-key=abc" {
		t.Errorf("Telemetry = %+v", cfg.Telemetry)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	cleanEnv(t)

	write := func(t *testing.T, content string) string {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("file not found", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", "/nonexistent/config.json")
		_, err := Load(context.Background())
		if err == nil {
			t.Error("expected error for nonexistent file")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", write(t, "{invalid json"))
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "parsing config file") {
			t.Errorf("expected parse error, got: %v", err)
		}
	})

	t.Run("missing store", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", write(t, `{"store_id": "test"}`))
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "store_url is required") {
			t.Errorf("expected store_url error, got: %v", err)
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", write(t, `{
			"store": {"store_url": "https://s.com", "consumer_key": "k", "consumer_secret": "s"},
			"upstream_timeout": "fast"
		}`))
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "invalid upstream_timeout") {
			t.Errorf("expected duration error, got: %v", err)
		}
	})
}
