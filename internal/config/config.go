/*
 * This file is part of speechify-go (https://github.com/loqalabs/speechify-go).
 * Copyright (C) 2025 Loqa Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for speechify-go tooling. Precedence is
// resolved once at load time: environment variables override config-file
// values, which override defaults. Callers that want explicit values set
// the fields after loading.
type Config struct {
	Speechify SpeechifyConfig `yaml:"speechify"`
	Logging   LoggingConfig   `yaml:"logging"`
	NATS      NATSConfig      `yaml:"nats"`
	History   HistoryConfig   `yaml:"history"`
}

// SpeechifyConfig holds the client-facing API configuration.
type SpeechifyConfig struct {
	APIKey      string        `yaml:"api_key"`
	AccessToken string        `yaml:"access_token"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	AudioFormat string        `yaml:"audio_format"` // default synthesis format (mp3, wav, ogg, aac)
	Speed       float32       `yaml:"speed"`        // default speech speed (1.0 = normal)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NATSConfig holds the optional synthesis-event publisher configuration.
type NATSConfig struct {
	Enabled       bool          `yaml:"enabled"`
	URL           string        `yaml:"url"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	MaxReconnect  int           `yaml:"max_reconnect"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
}

// HistoryConfig holds the optional SQLite synthesis-history configuration.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Load loads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := defaults()
	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadWithFallback loads configuration from a YAML file before applying
// the environment. Priority for the file itself: explicit path >
// ~/.speechifyrc > none.
func LoadWithFallback(explicitPath string) (*Config, error) {
	cfg := defaults()

	path := explicitPath
	if path == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(homeDir, ".speechifyrc")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Speechify: SpeechifyConfig{
			BaseURL:     "https://api.sws.speechify.com/v1",
			Timeout:     30 * time.Second,
			AudioFormat: "mp3",
			Speed:       1.25,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://localhost:4222",
			SubjectPrefix: "speechify",
			MaxReconnect:  10,
			ReconnectWait: 2 * time.Second,
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "./data/speechify.db",
		},
	}
}

// applyEnv overlays environment variables onto cfg. Unset variables leave
// the existing value alone, so file values and defaults survive.
func applyEnv(cfg *Config) {
	cfg.Speechify.APIKey = getEnvString("SPEECHIFY_API_KEY", cfg.Speechify.APIKey)
	cfg.Speechify.AccessToken = getEnvString("SPEECHIFY_ACCESS_TOKEN", cfg.Speechify.AccessToken)
	cfg.Speechify.BaseURL = getEnvString("SPEECHIFY_BASE_URL", cfg.Speechify.BaseURL)
	cfg.Speechify.Timeout = getEnvDuration("SPEECHIFY_TIMEOUT", cfg.Speechify.Timeout)
	cfg.Speechify.AudioFormat = getEnvString("SPEECHIFY_AUDIO_FORMAT", cfg.Speechify.AudioFormat)
	cfg.Speechify.Speed = getEnvFloat32("SPEECHIFY_SPEED", cfg.Speechify.Speed)

	cfg.Logging.Level = getEnvString("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvString("LOG_FORMAT", cfg.Logging.Format)

	cfg.NATS.Enabled = getEnvBool("NATS_ENABLED", cfg.NATS.Enabled)
	cfg.NATS.URL = getEnvString("NATS_URL", cfg.NATS.URL)
	cfg.NATS.SubjectPrefix = getEnvString("NATS_SUBJECT_PREFIX", cfg.NATS.SubjectPrefix)
	cfg.NATS.MaxReconnect = getEnvInt("NATS_MAX_RECONNECT", cfg.NATS.MaxReconnect)
	cfg.NATS.ReconnectWait = getEnvDuration("NATS_RECONNECT_WAIT", cfg.NATS.ReconnectWait)

	cfg.History.Enabled = getEnvBool("HISTORY_ENABLED", cfg.History.Enabled)
	cfg.History.DBPath = getEnvString("DB_PATH", cfg.History.DBPath)
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Speechify.BaseURL == "" {
		return fmt.Errorf("Speechify base URL must be provided")
	}

	if c.Speechify.Timeout <= 0 {
		return fmt.Errorf("Speechify timeout must be positive: %v", c.Speechify.Timeout)
	}

	if c.Speechify.Speed < 0 {
		return fmt.Errorf("Speechify speed must not be negative: %f", c.Speechify.Speed)
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("NATS URL must be provided when NATS is enabled")
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history DB path must be provided when history is enabled")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatValue)
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
