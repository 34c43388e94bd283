// Package pkg implements the pokeduel game server: the room registry, the two
// WebSocket listeners, the session-to-lobby bridge, and the card catalog surface.
package pkg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ListenerConfig holds bind settings for one of the HTTP servers.
type ListenerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
func (l ListenerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// GameConfig holds room settings.
type GameConfig struct {
	// DefaultRoom is the room every session connection is routed into.
	DefaultRoom string `mapstructure:"default_room"`
	// RoomCapacity is the fixed member limit of each room.
	RoomCapacity int `mapstructure:"room_capacity"`
}

// CatalogConfig holds PokeAPI client settings.
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "text".
	Format string `mapstructure:"format"`
}

// Config is the full server configuration.
type Config struct {
	Lobby   ListenerConfig `mapstructure:"lobby"`
	Session ListenerConfig `mapstructure:"session"`
	Metrics ListenerConfig `mapstructure:"metrics"`
	Game    GameConfig     `mapstructure:"game"`
	Catalog CatalogConfig  `mapstructure:"catalog"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// LoadConfig builds the configuration from defaults, an optional config file,
// and POKEDUEL_-prefixed environment variables, in increasing precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("lobby.host", "0.0.0.0")
	v.SetDefault("lobby.port", 3000)
	v.SetDefault("session.host", "0.0.0.0")
	v.SetDefault("session.port", 4000)
	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", 8081)
	v.SetDefault("game.default_room", "room-1")
	v.SetDefault("game.room_capacity", 2)
	v.SetDefault("catalog.base_url", DefaultCatalogBaseURL)
	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix("POKEDUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that cannot serve.
func (c *Config) Validate() error {
	for name, l := range map[string]ListenerConfig{
		"lobby":   c.Lobby,
		"session": c.Session,
		"metrics": c.Metrics,
	} {
		if l.Port <= 0 || l.Port > 65535 {
			return fmt.Errorf("invalid %s port %d", name, l.Port)
		}
	}

	if c.Game.RoomCapacity <= 0 {
		return errors.New("room capacity must be positive")
	}
	if c.Game.DefaultRoom == "" {
		return errors.New("default room must not be empty")
	}
	if c.Catalog.Timeout <= 0 {
		return errors.New("catalog timeout must be positive")
	}

	return nil
}
