package models

import "time"

// Storage backends accepted by storage.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// StorageConfig selects and tunes the durable key-value slot.
type StorageConfig struct {
	Backend      string        `yaml:"backend" mapstructure:"backend"`
	Key          string        `yaml:"key" mapstructure:"key"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ListConfig holds list ordering behaviour.
type ListConfig struct {
	IncompleteFirst bool `yaml:"incomplete_first" mapstructure:"incomplete_first"`
}

// AnimationConfig controls row enter/exit transitions. A zero Duration
// disables the visual phase entirely.
type AnimationConfig struct {
	Duration time.Duration `yaml:"duration" mapstructure:"duration"`
	FPS      int           `yaml:"fps" mapstructure:"fps"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// EventsConfig toggles the activity event log.
type EventsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Config holds application settings read from .todoconfig via Viper.
type Config struct {
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	List      ListConfig      `yaml:"list" mapstructure:"list"`
	Animation AnimationConfig `yaml:"animation" mapstructure:"animation"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Events    EventsConfig    `yaml:"events" mapstructure:"events"`
}
