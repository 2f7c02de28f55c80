package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 10000
	defaultCodec          = "json"
	defaultRedisAddr      = "localhost:6379"
	defaultMinPlayers     = 3
	defaultMaxPlayers     = 5
	defaultLobbyTimeout   = 30 // 分钟
	defaultShutdown       = 10 // 分钟
	defaultShutdownCheck  = 10 // 秒

	envPrefix = "SCOUT"

	// 一局游戏的人数范围
	minSupportedPlayers = 3
	maxSupportedPlayers = 5
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Game     GameConfig     `mapstructure:"game"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	MaxConnections int    `mapstructure:"max_connections"`
	Codec          string `mapstructure:"codec"` // json 或 protobuf
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisConfig Redis 镜像配置，未启用时只使用内存
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	MinPlayers            int `mapstructure:"min_players"`
	MaxPlayers            int `mapstructure:"max_players"`
	LobbyTimeout          int `mapstructure:"lobby_timeout"`           // 大厅空闲超时（分钟）
	ShutdownTimeout       int `mapstructure:"shutdown_timeout"`        // 优雅关闭最长等待（分钟）
	ShutdownCheckInterval int `mapstructure:"shutdown_check_interval"` // 优雅关闭检查间隔（秒）
}

// LobbyTimeoutDuration 返回大厅空闲超时时长
func (c *GameConfig) LobbyTimeoutDuration() time.Duration {
	return time.Duration(c.LobbyTimeout) * time.Minute
}

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回优雅关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `mapstructure:"allowed_origins"`
	RateLimit      RateLimitConfig    `mapstructure:"rate_limit"`
	MessageLimit   MessageLimitConfig `mapstructure:"message_limit"`
}

// RateLimitConfig 每个 IP 的建连频率限制
type RateLimitConfig struct {
	MaxPerSecond int `mapstructure:"max_per_second"`
	MaxPerMinute int `mapstructure:"max_per_minute"`
	BanDuration  int `mapstructure:"ban_duration"` // 秒
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 每个连接的消息频率限制
type MessageLimitConfig struct {
	MaxPerSecond int `mapstructure:"max_per_second"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 加载配置文件，环境变量 SCOUT_<SECTION>_<KEY> 优先于文件。
// path 为空时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	var cfg Config
	if err := newViper().Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("默认配置无效: %v", err))
	}
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", defaultHost)
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.max_connections", defaultMaxConnections)
	v.SetDefault("server.codec", defaultCodec)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", defaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("game.min_players", defaultMinPlayers)
	v.SetDefault("game.max_players", defaultMaxPlayers)
	v.SetDefault("game.lobby_timeout", defaultLobbyTimeout)
	v.SetDefault("game.shutdown_timeout", defaultShutdown)
	v.SetDefault("game.shutdown_check_interval", defaultShutdownCheck)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.rate_limit.max_per_second", 10)
	v.SetDefault("security.rate_limit.max_per_minute", 60)
	v.SetDefault("security.rate_limit.ban_duration", 60)
	v.SetDefault("security.message_limit.max_per_second", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate 校验配置，汇总所有错误
func (c Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.MaxConnections < 1 {
		errs = append(errs, fmt.Sprintf("server.max_connections must be >= 1, got %d", c.Server.MaxConnections))
	}
	validCodecs := map[string]bool{"json": true, "protobuf": true}
	if !validCodecs[c.Server.Codec] {
		errs = append(errs, fmt.Sprintf("server.codec must be one of [json, protobuf], got %q", c.Server.Codec))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr must not be empty when redis is enabled")
	}

	g := c.Game
	if g.MinPlayers < minSupportedPlayers || g.MaxPlayers > maxSupportedPlayers || g.MinPlayers > g.MaxPlayers {
		errs = append(errs, fmt.Sprintf("game players must satisfy %d <= min_players <= max_players <= %d, got %d..%d",
			minSupportedPlayers, maxSupportedPlayers, g.MinPlayers, g.MaxPlayers))
	}
	if g.LobbyTimeout < 1 {
		errs = append(errs, fmt.Sprintf("game.lobby_timeout must be >= 1, got %d", g.LobbyTimeout))
	}
	if g.ShutdownTimeout < 0 {
		errs = append(errs, "game.shutdown_timeout must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
