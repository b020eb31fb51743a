// Package config loads LoopLog's application config.
// The config lives in ~/.config/looplog/config.toml; every field is optional.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"looplog/internal/storage"
)

// Config holds runtime options that are not user-facing tracker settings.
type Config struct {
	Store        storage.Kind
	DataDir      string
	TickInterval time.Duration
	Sound        bool
	Volume       float64
	ToastFor     time.Duration
	LogLevel     string
}

const (
	defaultConfigPath   = "~/.config/looplog/config.toml"
	defaultDataDir      = "~/.local/share/looplog"
	defaultTickInterval = 10 * time.Millisecond
	defaultToastFor     = 4 * time.Second
	defaultLogLevel     = "info"
)

type fileConfig struct {
	Store          string   `toml:"store"`
	DataDir        string   `toml:"data_dir"`
	TickIntervalMs int      `toml:"tick_interval_ms"`
	Sound          *bool    `toml:"sound"`
	Volume         *float64 `toml:"volume"`
	ToastSeconds   int      `toml:"toast_seconds"`
	LogLevel       string   `toml:"log_level"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the config used when no file exists.
func Default() Config {
	return Config{
		Store:        storage.KindYAML,
		DataDir:      mustExpand(defaultDataDir),
		TickInterval: defaultTickInterval,
		Sound:        true,
		ToastFor:     defaultToastFor,
		LogLevel:     defaultLogLevel,
	}
}

// Load reads the config at path (or the default path), falling back to
// defaults when the file is missing.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return cfg, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if store := strings.TrimSpace(raw.Store); store != "" {
		cfg.Store = storage.Kind(strings.ToLower(store))
	}
	if dir := strings.TrimSpace(raw.DataDir); dir != "" {
		cfg.DataDir = mustExpand(dir)
	}
	if raw.TickIntervalMs > 0 {
		cfg.TickInterval = time.Duration(raw.TickIntervalMs) * time.Millisecond
	}
	if raw.Sound != nil {
		cfg.Sound = *raw.Sound
	}
	if raw.Volume != nil {
		cfg.Volume = *raw.Volume
	}
	if raw.ToastSeconds > 0 {
		cfg.ToastFor = time.Duration(raw.ToastSeconds) * time.Second
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
