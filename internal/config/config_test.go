package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 500
  codec: protobuf

redis:
  enabled: true
  addr: "redis:6379"
  password: "secret"
  db: 1

game:
  min_players: 4
  max_players: 5
  lobby_timeout: 15
  shutdown_timeout: 5

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  rate_limit:
    max_per_second: 20
    max_per_minute: 120
    ban_duration: 120
  message_limit:
    max_per_second: 50

logging:
  level: debug
  format: console
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 500, cfg.Server.MaxConnections)
	assert.Equal(t, "protobuf", cfg.Server.Codec)

	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)

	assert.Equal(t, 4, cfg.Game.MinPlayers)
	assert.Equal(t, 5, cfg.Game.MaxPlayers)
	assert.Equal(t, 15*time.Minute, cfg.Game.LobbyTimeoutDuration())

	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 20, cfg.Security.RateLimit.MaxPerSecond)
	assert.Equal(t, 120, cfg.Security.RateLimit.MaxPerMinute)
	assert.Equal(t, 50, cfg.Security.MessageLimit.MaxPerSecond)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	content := `
server:
  port: 70000
  codec: xml
game:
  min_players: 2
logging:
  level: trace
`
	cfg, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "server.codec")
	assert.Contains(t, err.Error(), "min_players")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxConnections, cfg.Server.MaxConnections)
	assert.Equal(t, defaultCodec, cfg.Server.Codec)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, defaultMinPlayers, cfg.Game.MinPlayers)
	assert.Equal(t, defaultMaxPlayers, cfg.Game.MaxPlayers)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	// 修改环境变量，不能并行

	t.Setenv("SCOUT_SERVER_HOST", "env-host")
	t.Setenv("SCOUT_SERVER_PORT", "9999")
	t.Setenv("SCOUT_REDIS_ADDR", "env-redis:6380")
	t.Setenv("SCOUT_GAME_MIN_PLAYERS", "4")
	t.Setenv("SCOUT_SECURITY_ALLOWED_ORIGINS", "http://a.com,http://b.com")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "env-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 4, cfg.Game.MinPlayers)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.Security.AllowedOrigins)
}

func TestGameConfig_DurationMethods(t *testing.T) {
	t.Parallel()

	cfg := &GameConfig{
		LobbyTimeout:          10,
		ShutdownTimeout:       60,
		ShutdownCheckInterval: 5,
	}

	assert.Equal(t, 10*time.Minute, cfg.LobbyTimeoutDuration())
	assert.Equal(t, 60*time.Minute, cfg.ShutdownTimeoutDuration())
	assert.Equal(t, 5*time.Second, cfg.ShutdownCheckIntervalDuration())
}

func TestRateLimitConfig_BanDurationTime(t *testing.T) {
	t.Parallel()

	cfg := &RateLimitConfig{BanDuration: 120}
	assert.Equal(t, 120*time.Second, cfg.BanDurationTime())
}

func TestValidate_RedisAddrRequiredWhenEnabled(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "redis.addr")
}

func TestPropertyPlayerRange(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		minPlayers := rapid.IntRange(0, 8).Draw(t, "min")
		maxPlayers := rapid.IntRange(0, 8).Draw(t, "max")

		cfg := Default()
		cfg.Game.MinPlayers = minPlayers
		cfg.Game.MaxPlayers = maxPlayers

		valid := minPlayers >= 3 && minPlayers <= maxPlayers && maxPlayers <= 5
		err := cfg.Validate()
		if valid && err != nil {
			t.Fatalf("valid range %d..%d rejected: %v", minPlayers, maxPlayers, err)
		}
		if !valid && err == nil {
			t.Fatalf("invalid range %d..%d accepted", minPlayers, maxPlayers)
		}
	})
}

func TestPropertyPortRange(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := Default()
		cfg.Server.Port = port
		if cfg.Validate() == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}
