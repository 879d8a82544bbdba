/*
 * This file is part of Voxlate (https://github.com/voxlate/voxlate-hub).
 * Copyright (C) 2026 Voxlate Labs
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
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Voxlate hub
type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Languages LanguagesConfig
	Logging   LoggingConfig
	NATS      NATSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DBPath       string
}

// EngineConfig holds speech translation engine configuration
type EngineConfig struct {
	URL string // REST API URL for the speech-to-speech inference service

	// Timeout bounds a single generate call. Inference can take several
	// seconds per clip, so this is intentionally generous.
	Timeout time.Duration

	// WarmupOnStart triggers engine initialization at server startup
	// instead of on the first translation request.
	WarmupOnStart bool

	// SerializeInference serializes generate calls with a lock. Required
	// for single-device inference engines that do not permit concurrent
	// calls; waiting requests queue behind the lock.
	SerializeInference bool
}

// LanguagesConfig holds the supported language code set
type LanguagesConfig struct {
	Codes []string // ISO-639-3-style three-letter codes
	File  string   // optional YAML file overriding Codes
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// NATSConfig holds NATS messaging configuration
type NATSConfig struct {
	URL           string
	MaxReconnect  int
	ReconnectWait time.Duration
}

// defaultLanguages is the baseline code set supported by the pretrained
// engine. Deployments extend or replace it via VOXLATE_LANGUAGES or a
// languages file.
var defaultLanguages = []string{
	"eng", "fra", "spa", "deu", "ita", "por", "rus", "cmn", "jpn", "kor",
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnvString("VOXLATE_HOST", "0.0.0.0"),
			Port:         getEnvInt("VOXLATE_PORT", 8600),
			ReadTimeout:  getEnvDuration("VOXLATE_READ_TIMEOUT", 60*time.Second),
			WriteTimeout: getEnvDuration("VOXLATE_WRITE_TIMEOUT", 300*time.Second),
			DBPath:       getEnvString("VOXLATE_DB_PATH", "./data/voxlate-hub.db"),
		},
		Engine: EngineConfig{
			URL:                getEnvString("ENGINE_URL", "http://localhost:8601"),
			Timeout:            getEnvDuration("ENGINE_TIMEOUT", 120*time.Second),
			WarmupOnStart:      getEnvBool("ENGINE_WARMUP", false),
			SerializeInference: getEnvBool("ENGINE_SERIALIZE", true),
		},
		Languages: LanguagesConfig{
			Codes: getEnvStringSlice("VOXLATE_LANGUAGES", defaultLanguages),
			File:  getEnvString("VOXLATE_LANGUAGES_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		NATS: NATSConfig{
			URL:           getEnvString("NATS_URL", "nats://localhost:4222"),
			MaxReconnect:  getEnvInt("NATS_MAX_RECONNECT", 10),
			ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
	}

	if config.Languages.File != "" {
		codes, err := loadLanguagesFile(config.Languages.File)
		if err != nil {
			return nil, fmt.Errorf("invalid languages file: %w", err)
		}
		config.Languages.Codes = codes
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Engine.URL == "" {
		return fmt.Errorf("engine URL must be provided")
	}

	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine timeout must be positive: %v", c.Engine.Timeout)
	}

	if len(c.Languages.Codes) == 0 {
		return fmt.Errorf("at least one language code must be configured")
	}

	for _, code := range c.Languages.Codes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("language codes must be non-empty")
		}
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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

func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
