package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the runtime settings for the board server.
type Config struct {
	HTTP   *HTTPConfig   `json:"http"`
	Reaper *ReaperConfig `json:"reaper"`
}

type HTTPConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// ReaperConfig controls the idle-room sweep.
type ReaperConfig struct {
	Interval time.Duration `json:"interval"`
	RoomTTL  time.Duration `json:"room_ttl"`
}

// DefaultConfig returns the production defaults: hourly sweep, 24 h room TTL.
func DefaultConfig() *Config {
	return &Config{
		HTTP: &HTTPConfig{
			Host:         "0.0.0.0",
			Port:         3001,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Reaper: &ReaperConfig{
			Interval: time.Hour,
			RoomTTL:  24 * time.Hour,
		},
	}
}

// Load returns the defaults overridden by a .env file (if present) and the
// environment. Environment wins over the file, matching godotenv semantics.
func Load() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if host := os.Getenv("BOARD_HTTP_HOST"); host != "" {
		cfg.HTTP.Host = host
	}
	if port := os.Getenv("BOARD_HTTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.HTTP.Port = p
		}
	}
	if readTimeout := os.Getenv("BOARD_HTTP_READ_TIMEOUT"); readTimeout != "" {
		if timeout, err := time.ParseDuration(readTimeout); err == nil {
			cfg.HTTP.ReadTimeout = timeout
		}
	}
	if writeTimeout := os.Getenv("BOARD_HTTP_WRITE_TIMEOUT"); writeTimeout != "" {
		if timeout, err := time.ParseDuration(writeTimeout); err == nil {
			cfg.HTTP.WriteTimeout = timeout
		}
	}
	if interval := os.Getenv("BOARD_REAPER_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Reaper.Interval = d
		}
	}
	if ttl := os.Getenv("BOARD_ROOM_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.Reaper.RoomTTL = d
		}
	}

	return cfg
}

// Validate rejects configurations that cannot serve.
func (c *Config) Validate() error {
	if c.HTTP == nil {
		return fmt.Errorf("HTTP configuration is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("HTTP host cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 {
		return fmt.Errorf("HTTP read timeout must be positive")
	}
	if c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP write timeout must be positive")
	}
	if c.Reaper == nil {
		return fmt.Errorf("reaper configuration is required")
	}
	if c.Reaper.Interval <= 0 {
		return fmt.Errorf("reaper interval must be positive")
	}
	if c.Reaper.RoomTTL <= 0 {
		return fmt.Errorf("room TTL must be positive")
	}
	return nil
}
