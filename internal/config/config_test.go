package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8012, cfg.HTTPPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, "review_db", cfg.PostgresDB)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REVIEW_HTTP_PORT", "9100")
	t.Setenv("REVIEW_STORE", "memory")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("REVIEW_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_UnknownStore(t *testing.T) {
	t.Setenv("REVIEW_STORE", "mongo")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEW_STORE")
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "1.5")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE")
}

func TestLoad_UnparsablePort(t *testing.T) {
	t.Setenv("REVIEW_HTTP_PORT", "eighty")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load review config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:       8012,
			Store:          StorePostgres,
			PostgresHost:   "db",
			PostgresUser:   "review",
			PostgresPort:   5432,
			DBMaxConns:     10,
			DBMinConns:     2,
			OTELSampleRate: 0.5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory store skips postgres checks", func(c *Config) { c.Store = StoreMemory; c.PostgresHost = "" }, ""},
		{"missing host", func(c *Config) { c.PostgresHost = "" }, "POSTGRES_HOST is required"},
		{"missing user", func(c *Config) { c.PostgresUser = "" }, "POSTGRES_USER is required"},
		{"bad postgres port", func(c *Config) { c.PostgresPort = 70000 }, "invalid Postgres port"},
		{"min above max", func(c *Config) { c.DBMinConns = 20 }, "exceeds DB_MAX_CONNS"},
		{"kafka without brokers", func(c *Config) { c.KafkaEnabled = true }, "KAFKA_BROKERS is required"},
		{"negative sample rate", func(c *Config) { c.OTELSampleRate = -0.1 }, "OTEL_SAMPLE_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig(t *testing.T) {
	cfg := &Config{
		PostgresHost:          "db",
		PostgresPort:          6432,
		PostgresUser:          "review",
		PostgresPass:          "secret",
		PostgresDB:            "review_db",
		PostgresSSL:           "require",
		DBMaxConns:            10,
		DBMinConns:            2,
		DBMaxConnLifetimeMins: 60,
		DBMaxConnIdleTimeMins: 15,
	}

	pg := cfg.PostgresConfig()

	assert.Equal(t, "postgres://review:secret@db:6432/review_db?sslmode=require", pg.DSN())
	assert.Equal(t, time.Hour, pg.MaxConnLifetime)
	assert.Equal(t, 15*time.Minute, pg.MaxConnIdleTime)
	assert.Equal(t, int32(10), pg.MaxConns)
}
