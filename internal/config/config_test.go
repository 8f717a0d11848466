package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
  request_timeout: 3s
database:
  host: db.internal
  name: clinic
  user: scheduler
redis:
  addr: redis.internal:6379
jwt:
  secret: file-secret
outbox:
  batch_size: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port, "default kept")
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 10, cfg.Outbox.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ClinicTTL)
	assert.Equal(t, "host=db.internal port=5432 user=scheduler password= dbname=clinic sslmode=disable", cfg.Database.DSN())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("SCHEDULING_DATABASE_HOST", "db.override")
	t.Setenv("SCHEDULING_JWT_SECRET", "env-secret")
	t.Setenv("SCHEDULING_RATE_LIMIT_BURST", "7")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: -1\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
