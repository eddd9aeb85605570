// Package config provides configuration management for the DMX engine.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the engine process.
type Config struct {
	// Process
	Env string

	// Database
	DatabaseURL string

	// Merge pipeline
	JitterThreshold int // LTP passthrough suppression threshold (spec §4.5.1), default 2

	// Art-Net
	ArtNetEnabled       bool
	ArtNetPort          int
	ArtNetTargetFPS     int
	ArtNetIdleKeepAlive time.Duration

	// sACN
	SACNEnabled bool

	// MIDI
	MIDIEnabled bool

	// Timing monitoring
	DriftWarnThreshold time.Duration // loaded from the environment; no component reads it

	// Scene engine
	DefaultFadeMS int // loaded from the environment; no component reads it (recalls use each scene's own DefaultFadeMS)

	NonInteractive bool
}

// Load loads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		Env: getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", "file:./dmxcore.db"),

		JitterThreshold: getEnvInt("JITTER_THRESHOLD", 2),

		ArtNetEnabled:       getEnvBool("ARTNET_ENABLED", true),
		ArtNetPort:          getEnvInt("ARTNET_PORT", 6454),
		ArtNetTargetFPS:     getEnvInt("ARTNET_TARGET_FPS", 44),
		ArtNetIdleKeepAlive: getEnvDuration("ARTNET_IDLE_KEEPALIVE_MS", 2000*time.Millisecond),

		SACNEnabled: getEnvBool("SACN_ENABLED", false),

		MIDIEnabled: getEnvBool("MIDI_ENABLED", false),

		DriftWarnThreshold: getEnvDuration("DRIFT_WARN_THRESHOLD_MS", 50*time.Millisecond),

		DefaultFadeMS: getEnvInt("DEFAULT_FADE_MS", 3000),

		NonInteractive: getEnvBool("NON_INTERACTIVE", false),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration returns an environment variable parsed as a millisecond
// count, or a default duration.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if msVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(msVal) * time.Millisecond
		}
	}
	return defaultValue
}
