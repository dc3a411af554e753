package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "GIN_MODE", "SESSION_BACKEND", "SESSION_TTL", "LOG_FORMAT", "DEFAULT_PASSWORD", "LOGIN_MAX_ATTEMPTS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.SessionBackend != SessionBackendMemory {
		t.Fatalf("unexpected session backend: %s", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 0 {
		t.Fatalf("sessions must not expire by default, got %v", cfg.SessionTTL)
	}
	if cfg.DefaultPassword != DefaultPassword {
		t.Fatalf("unexpected default password: %s", cfg.DefaultPassword)
	}
	if cfg.LoginMaxAttempts != 5 || cfg.LoginWindow != 15*time.Minute {
		t.Fatalf("unexpected login throttle: %d / %v", cfg.LoginMaxAttempts, cfg.LoginWindow)
	}
	if cfg.CookieSecure() {
		t.Fatal("cookie must not be Secure in debug mode")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_BACKEND", "REDIS")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.SessionBackend != SessionBackendRedis {
		t.Fatalf("unexpected session backend: %s", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected ttl: %v", cfg.SessionTTL)
	}
	if cfg.LoginMaxAttempts != 5 {
		t.Fatalf("invalid int must fall back to default, got %d", cfg.LoginMaxAttempts)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[0] != "http://a.test" || origins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %#v", origins)
	}
	if proxies := cfg.TrustedProxyList(); len(proxies) != 1 || proxies[0] != "10.0.0.0/8" {
		t.Fatalf("unexpected proxies: %#v", proxies)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:            "8000",
			GinMode:         "debug",
			DatabasePath:    "db/test.db",
			EntryPage:       "/index.html",
			SessionBackend:  SessionBackendMemory,
			DefaultPassword: DefaultPassword,
			LogFormat:       "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "abc" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.SessionBackend = "bolt" }, wantErr: true},
		{name: "redis without url", mutate: func(c *Config) { c.SessionBackend = SessionBackendRedis }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "relative entry page", mutate: func(c *Config) { c.EntryPage = "index.html" }, wantErr: true},
		{name: "origin without scheme", mutate: func(c *Config) { c.CORSAllowedOrigins = "example.test" }, wantErr: true},
		{name: "origins with scheme", mutate: func(c *Config) { c.CORSAllowedOrigins = "http://a.test,https://b.test" }},
		{name: "release with default password", mutate: func(c *Config) { c.GinMode = "release" }, wantErr: true},
		{name: "release with custom password", mutate: func(c *Config) {
			c.GinMode = "release"
			c.DefaultPassword = "moonlight"
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
