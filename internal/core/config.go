// Package core contains the business logic of the to-do list: the task
// store with its edit-mode state machine, snapshot persistence, and
// configuration loading.
package core

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/todo/pkg/models"
)

// ConfigFileName is the YAML configuration file looked up in the base path.
const ConfigFileName = ".todoconfig"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// ConfigurationManager loads and validates .todoconfig.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .todoconfig from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns the settings used when no configuration file exists.
func DefaultConfig() *models.Config {
	return &models.Config{
		Storage: models.StorageConfig{
			Backend:      models.BackendFile,
			Key:          DefaultStorageKey,
			WriteTimeout: 2 * time.Second,
		},
		List: models.ListConfig{IncompleteFirst: true},
		Animation: models.AnimationConfig{
			Duration: 500 * time.Millisecond,
			FPS:      30,
		},
		Log: models.LogConfig{
			Level: "info",
			File:  "todo.log",
		},
		Events: models.EventsConfig{Enabled: true},
	}
}

// LoadConfig reads .todoconfig from the base path. A missing file yields
// DefaultConfig; keys absent from the file keep their defaults.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.key", def.Storage.Key)
	v.SetDefault("storage.write_timeout", def.Storage.WriteTimeout)
	v.SetDefault("list.incomplete_first", def.List.IncompleteFirst)
	v.SetDefault("animation.duration", def.Animation.Duration)
	v.SetDefault("animation.fps", def.Animation.FPS)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("events.enabled", def.Events.Enabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg := &models.Config{
		Storage: models.StorageConfig{
			Backend:      v.GetString("storage.backend"),
			Key:          v.GetString("storage.key"),
			WriteTimeout: v.GetDuration("storage.write_timeout"),
		},
		List: models.ListConfig{
			IncompleteFirst: v.GetBool("list.incomplete_first"),
		},
		Animation: models.AnimationConfig{
			Duration: v.GetDuration("animation.duration"),
			FPS:      v.GetInt("animation.fps"),
		},
		Log: models.LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		Events: models.EventsConfig{
			Enabled: v.GetBool("events.enabled"),
		},
	}

	if err := cm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig reports the first invalid setting in cfg.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("config must not be nil")
	}
	switch cfg.Storage.Backend {
	case models.BackendFile, models.BackendSQLite, models.BackendMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (use file, sqlite or memory)", cfg.Storage.Backend)
	}
	if cfg.Storage.Key == "" {
		return fmt.Errorf("storage.key: must not be empty")
	}
	if cfg.Storage.WriteTimeout < 0 {
		return fmt.Errorf("storage.write_timeout: must not be negative")
	}
	if cfg.Animation.Duration < 0 {
		return fmt.Errorf("animation.duration: must not be negative")
	}
	if cfg.Animation.FPS < 1 || cfg.Animation.FPS > 120 {
		return fmt.Errorf("animation.fps: must be between 1 and 120, got %d", cfg.Animation.FPS)
	}
	if !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	return nil
}
