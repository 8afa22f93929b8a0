package config

import (
	"testing"

	"github.com/spf13/viper"
)

// loadFromEnv resets viper's global state, applies the given environment, and
// loads configuration from a directory without a .env file.
func loadFromEnv(t *testing.T, env map[string]string) Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for key, value := range env {
		t.Setenv(key, value)
	}
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadFromEnv(t, nil)

	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.RazorpayAPIBaseURL != "https://api.razorpay.com" {
		t.Errorf("unexpected default gateway base URL: %q", cfg.RazorpayAPIBaseURL)
	}
	if cfg.RedisRateLimitPrefix != "sevasetu:rate_limit" {
		t.Errorf("unexpected default rate limit prefix: %q", cfg.RedisRateLimitPrefix)
	}
	if cfg.InitFlowRateLimitPerMin != 60 {
		t.Errorf("expected default rate limit 60, got %d", cfg.InitFlowRateLimitPerMin)
	}
	if cfg.RazorpayWebhookSecret != "" {
		t.Errorf("expected empty webhook secret, got %q", cfg.RazorpayWebhookSecret)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	cfg := loadFromEnv(t, map[string]string{
		"SERVER_PORT":             "9090",
		"DATABASE_URL":            "postgres://localhost:5432/donations",
		"RAZORPAY_KEY_ID":         "rzp_test_key",
		"RAZORPAY_KEY_SECRET":     "rzp_test_secret",
		"RAZORPAY_WEBHOOK_SECRET": "whsec_test",
		"JWT_SECRET":              "jwt_test",
	})

	if cfg.ServerPort != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.ServerPort)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/donations" {
		t.Errorf("unexpected database URL: %q", cfg.DatabaseURL)
	}
	if cfg.RazorpayKeyID != "rzp_test_key" || cfg.RazorpayKeySecret != "rzp_test_secret" {
		t.Errorf("unexpected gateway credentials: %q %q", cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	}
	if cfg.RazorpayWebhookSecret != "whsec_test" {
		t.Errorf("unexpected webhook secret: %q", cfg.RazorpayWebhookSecret)
	}
}

func TestLoadConfigPlatformPortOverride(t *testing.T) {
	// Hosting platforms inject PORT; it wins over SERVER_PORT.
	cfg := loadFromEnv(t, map[string]string{
		"SERVER_PORT": "9090",
		"PORT":        "3000",
	})
	if cfg.ServerPort != "3000" {
		t.Errorf("expected PORT override 3000, got %q", cfg.ServerPort)
	}
}

func TestLoadConfigTrimsSecrets(t *testing.T) {
	cfg := loadFromEnv(t, map[string]string{
		"RAZORPAY_WEBHOOK_SECRET": "  whsec_test \n",
		"REDIS_URL":               " redis://localhost:6379 ",
	})
	if cfg.RazorpayWebhookSecret != "whsec_test" {
		t.Errorf("expected trimmed webhook secret, got %q", cfg.RazorpayWebhookSecret)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("expected trimmed redis URL, got %q", cfg.RedisURL)
	}
}

func TestLoadConfigCoercesNegativeRateLimit(t *testing.T) {
	cfg := loadFromEnv(t, map[string]string{
		"INIT_FLOW_RATE_LIMIT_PER_MINUTE": "-5",
	})
	if cfg.InitFlowRateLimitPerMin != 0 {
		t.Errorf("expected negative rate limit coerced to 0, got %d", cfg.InitFlowRateLimitPerMin)
	}
}
