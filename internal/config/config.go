package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel            string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	SocketPort          string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"12345"`
	WebSocketPort       string        `yaml:"websocket-port" env:"WEBSOCKET_PORT" env-default:"8081"`
	HTTPPort            string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	WriteTimeout        time.Duration `yaml:"write-timeout" env:"WRITE_TIMEOUT" env-default:"5s"`
	OutboxSize          int           `yaml:"outbox-size" env:"OUTBOX_SIZE" env-default:"16"`
	MaxFrameSize        int           `yaml:"max-frame-size" env:"MAX_FRAME_SIZE" env-default:"4096"`
	MatchmakingInterval time.Duration `yaml:"matchmaking-interval" env:"MATCHMAKING_INTERVAL" env-default:"1s"`
	Redis               Redis         `yaml:"redis"`
}

type Redis struct {
	Disabled     bool          `yaml:"disabled" env:"REDIS_DISABLED"`
	Host         string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port         string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	TTL          time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"0s"`
	RecorderSize int           `yaml:"recorder-size" env:"REDIS_RECORDER_SIZE" env-default:"1024"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid config file %s: %w", path, err))
	}

	return config
}

// Default builds a config from defaults and the environment only.
func Default() (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read config from env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects sizes and durations the transport cannot work with.
func (that *Config) Validate() error {
	if that.OutboxSize < 1 {
		return fmt.Errorf("outbox-size must be at least 1, got %d", that.OutboxSize)
	}

	if that.MaxFrameSize < 1 {
		return fmt.Errorf("max-frame-size must be at least 1, got %d", that.MaxFrameSize)
	}

	if that.WriteTimeout <= 0 {
		return fmt.Errorf("write-timeout must be positive, got %s", that.WriteTimeout)
	}

	if that.MatchmakingInterval <= 0 {
		return fmt.Errorf("matchmaking-interval must be positive, got %s", that.MatchmakingInterval)
	}

	if !that.Redis.Disabled && that.Redis.RecorderSize < 1 {
		return fmt.Errorf("redis.recorder-size must be at least 1, got %d", that.Redis.RecorderSize)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
