package config

import (
	"testing"
	"time"
)

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBMaxConns:      25,
			DBMinConns:      5,
			SessionCacheTTL: 30 * time.Minute,
		}
	}

	if err := validateConfig(base()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "max conns zero", mutate: func(c *Config) { c.DBMaxConns = 0 }},
		{name: "max conns too high", mutate: func(c *Config) { c.DBMaxConns = 500 }},
		{name: "min above max", mutate: func(c *Config) { c.DBMinConns = 50 }},
		{name: "cache ttl too short", mutate: func(c *Config) { c.SessionCacheTTL = time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetEnvFile(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{env: "prod", want: ".env.prod"},
		{env: "production", want: ".env.prod"},
		{env: "local", want: ".env.local"},
		{env: "dev", want: ".env.local"},
		{env: "staging", want: ".env.staging"},
	}

	for _, tt := range tests {
		if got := getEnvFile(tt.env); got != tt.want {
			t.Errorf("getEnvFile(%q): expected %q, got %q", tt.env, tt.want, got)
		}
	}
}

func TestLoadIntakePromptsDefaults(t *testing.T) {
	// Running from the package directory, the prompts file path does not
	// resolve, so the built-in texts apply.
	cfg := &Config{}
	if err := loadIntakePrompts(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Prompts.Greeting == "" || cfg.Prompts.FallbackApology == "" || cfg.Prompts.NoPredictionNote == "" {
		t.Errorf("default prompts not applied: %+v", cfg.Prompts)
	}
}
