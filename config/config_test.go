package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir())
	t.Setenv("TIERLIST_DATABASE_DSN", "file:test.db")
	t.Setenv("TIERLIST_PUSH_DEBOUNCE_WINDOW", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Push.DebounceWindow)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Push.Enabled())
}

func TestValidate(t *testing.T) {
	base := Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Push:     PushConfig{DebounceWindow: time.Hour},
		Session:  SessionConfig{TTL: time.Hour},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Database.Driver = "mysql"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Push.DebounceWindow = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Database.DSN = ""
	assert.Error(t, bad.Validate())
}
