// Package config loads server settings from the environment, an optional
// .env file and an optional YAML file of game tuning overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/game"
)

// Config holds all application configuration
type Config struct {
	Port        int
	PublicDir   string
	IndexFile   string
	LogLevel    string
	LogFormat   string
	SendBuffer  int
	NATSURL     string
	NATSSubject string
	Game        game.Tuning
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads envFile (if it exists) into the process environment, then
// builds the configuration from environment variables. A missing env file is
// not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration using getenv for lookups
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:        3000,
		PublicDir:   "public",
		IndexFile:   "views/index.html",
		LogLevel:    "info",
		LogFormat:   "text",
		SendBuffer:  game.SendBufferSize,
		NATSSubject: "game.events",
		Game:        game.DefaultTuning(),
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := getenv("SEND_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid SEND_BUFFER %q", v)
		}
		cfg.SendBuffer = n
	}
	if v := getenv("PUBLIC_DIR"); v != "" {
		cfg.PublicDir = v
	}
	if v := getenv("INDEX_FILE"); v != "" {
		cfg.IndexFile = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	cfg.NATSURL = getenv("NATS_URL")
	if v := getenv("NATS_SUBJECT"); v != "" {
		cfg.NATSSubject = v
	}

	if path := getenv("GAME_CONFIG"); path != "" {
		tuning, err := LoadTuning(path, cfg.Game)
		if err != nil {
			return nil, err
		}
		cfg.Game = tuning
	}

	return cfg, nil
}

// LoadTuning overlays the YAML file at path onto base. Keys absent from the
// file keep their base value.
func LoadTuning(path string, base game.Tuning) (game.Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read game config: %w", err)
	}
	return ParseTuning(data, base)
}

// ParseTuning decodes YAML game tuning on top of base and validates the result
func ParseTuning(data []byte, base game.Tuning) (game.Tuning, error) {
	tuning := base
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return base, fmt.Errorf("parse game config: %w", err)
	}
	if err := tuning.Validate(); err != nil {
		return base, fmt.Errorf("invalid game config: %w", err)
	}
	return tuning, nil
}
