package config

import (
	"errors"
	"testing"
	"time"
)

// clearEnv blanks every key LoadConfig reads so the host environment
// cannot leak into a case.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "PORT", "API_KEY", "STORE_BACKEND", "PUSH_PROVIDER",
		"PUSH_RATE_PER_SEC", "REDIS_URL", "DISPATCH_LOCK_TTL", "ACTIVITY_ASYNC",
		"WORKER_COUNT", "CALL_TIMEOUT", "REQUEST_TIMEOUT", "DB_SSLMODE",
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_URL",
		"LOG_LEVEL", "LOG_PRETTY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want 3000", cfg.ServerPort)
	}
	if cfg.StoreBackend != StoreFirestore || cfg.PushProvider != PushFCM {
		t.Errorf("backends = %s/%s", cfg.StoreBackend, cfg.PushProvider)
	}
	if cfg.DispatchLockTTL != 30*time.Second || cfg.CallTimeout != 10*time.Second || cfg.RequestTimeout != 60*time.Second {
		t.Errorf("durations = %v %v %v", cfg.DispatchLockTTL, cfg.CallTimeout, cfg.RequestTimeout)
	}
	if cfg.WorkerCount != 2 || cfg.PushRatePerSec != 0 || cfg.ActivityAsync {
		t.Errorf("workers=%d rate=%d async=%v", cfg.WorkerCount, cfg.PushRatePerSec, cfg.ActivityAsync)
	}
	if cfg.DBSSLMode != "require" || cfg.LogLevel != "info" {
		t.Errorf("sslmode=%q level=%q", cfg.DBSSLMode, cfg.LogLevel)
	}
	if cfg.ObjectStorageEnabled() {
		t.Error("object storage enabled without R2 settings")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("PUSH_PROVIDER", "expo")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ACTIVITY_ASYNC", "true")
	t.Setenv("CALL_TIMEOUT", "5")
	t.Setenv("DISPATCH_LOCK_TTL", "90s")
	t.Setenv("PUSH_RATE_PER_SEC", "20")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want PORT fallback", cfg.ServerPort)
	}
	if cfg.StoreBackend != StorePostgres || cfg.PushProvider != PushExpo {
		t.Errorf("backends = %s/%s", cfg.StoreBackend, cfg.PushProvider)
	}
	if cfg.CallTimeout != 5*time.Second || cfg.DispatchLockTTL != 90*time.Second {
		t.Errorf("durations = %v %v", cfg.CallTimeout, cfg.DispatchLockTTL)
	}
	if !cfg.ActivityAsync || cfg.PushRatePerSec != 20 {
		t.Errorf("async=%v rate=%d", cfg.ActivityAsync, cfg.PushRatePerSec)
	}

	t.Setenv("SERVER_PORT", "9000")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerPort != "9000" {
		t.Errorf("SERVER_PORT should win over PORT, got %q", cfg.ServerPort)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{APIKey: "k", StoreBackend: StoreFirestore, PushProvider: PushFCM}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing api key", func(c *Config) { c.APIKey = "" }, ErrAPIKeyRequired},
		{"unknown store", func(c *Config) { c.StoreBackend = "mongo" }, ErrUnknownStoreBackend},
		{"unknown push", func(c *Config) { c.PushProvider = "apns" }, ErrUnknownPushProvider},
		{"async without redis", func(c *Config) { c.ActivityAsync = true }, ErrActivityAsyncNoRedis},
		{"async with redis", func(c *Config) { c.ActivityAsync = true; c.RedisURL = "redis://x" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationEnv(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", 7 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"12", 12 * time.Second},
		{"-3s", 7 * time.Second},
		{"soon", 7 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.raw)
		if got := durationEnv("TEST_DURATION", 7*time.Second); got != tt.want {
			t.Errorf("durationEnv(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
