package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:  AppConfig{Name: "router-svc", Environment: "development"},
		HTTP: HTTPConfig{Port: 8080},
		Log:  LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Driver: "memory",
		},
		Routing: RoutingConfig{
			SpeedLimitKmh:     60,
			FixedDelaySeconds: 30,
			FreeFlowVolume:    351,
			CoeffA:            1.4648375,
			CoeffB:            93.75,
			MinCrawlSpeedKmh:  5,
			DefaultVolume:     120,
			MaxK:              16,
			MaxIterations:     1000,
			SearchTimeout:     10 * time.Second,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:    "missing app name",
			modify:  func(c *Config) { c.App.Name = "" },
			wantErr: "app.name is required",
		},
		{
			name:    "invalid http port",
			modify:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: "http.port",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "invalid database driver",
			modify:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "database.driver",
		},
		{
			name:    "zero speed limit",
			modify:  func(c *Config) { c.Routing.SpeedLimitKmh = 0 },
			wantErr: "routing.speed_limit_kmh",
		},
		{
			name:    "negative fixed delay",
			modify:  func(c *Config) { c.Routing.FixedDelaySeconds = -1 },
			wantErr: "routing.fixed_delay_seconds",
		},
		{
			name:    "crawl speed above limit",
			modify:  func(c *Config) { c.Routing.MinCrawlSpeedKmh = 90 },
			wantErr: "routing.min_crawl_speed_kmh",
		},
		{
			name:    "negative default volume",
			modify:  func(c *Config) { c.Routing.DefaultVolume = -10 },
			wantErr: "routing.default_volume",
		},
		{
			name:    "zero max k",
			modify:  func(c *Config) { c.Routing.MaxK = 0 },
			wantErr: "routing.max_k",
		},
		{
			name:    "auth enabled without secret",
			modify:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: "auth.secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateDefaultsLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.local",
		Port:     5433,
		Username: "router",
		Password: "secret",
		Database: "routeguide",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.local port=5433 user=router password=secret dbname=routeguide sslmode=require",
		d.DSN(),
	)
}

func TestCacheConfig_Address(t *testing.T) {
	c := CacheConfig{Host: "redis.local", Port: 6380}
	assert.Equal(t, "redis.local:6380", c.Address())
}

func TestConfig_Environment(t *testing.T) {
	cfg := validConfig()

	cfg.App.Environment = "development"
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.App.Environment = "prod"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}
