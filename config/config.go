// Package config loads the workspace settings file shared by every hanoibench
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvStoreDSN = "HANOIBENCH_STORE_DSN"
	EnvMQTTURL  = "MQTT_URL"
	EnvRedisURL = "REDIS_URL"
)

// Config models config.yaml.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Queue      QueueConfig      `yaml:"queue"`
	Server     ServerConfig     `yaml:"server"`
	Acceptance AcceptanceConfig `yaml:"acceptance"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// StoreConfig selects the run store. Driver is file, sqlite or postgres.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// TelemetryConfig lists the optional event sinks.
type TelemetryConfig struct {
	EventsFile string     `yaml:"events_file,omitempty"`
	MQTT       MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig enables the MQTT sink when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker,omitempty"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// QueueConfig points workers at the Redis attempt queue.
type QueueConfig struct {
	RedisURL       string `yaml:"redis_url"`
	Name           string `yaml:"name"`
	ResultsChannel string `yaml:"results_channel"`
	Concurrency    int    `yaml:"concurrency"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AcceptanceConfig holds the CEL expression deciding whether a run counts.
type AcceptanceConfig struct {
	Expression string `yaml:"expression"`
}

// ConfigDir resolves the directory storing workspace settings.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "hanoibench_config")
}

// Path returns the default config.yaml location for workspace.
func Path(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// Default returns the settings used when no file exists.
func Default(workspace string) *Config {
	return &Config{
		Log:   LogConfig{Level: "info"},
		Store: StoreConfig{Driver: "file", DSN: filepath.Join(ConfigDir(workspace), "runs")},
		Telemetry: TelemetryConfig{
			MQTT: MQTTConfig{Topic: "hanoibench", ClientID: "hanoibench"},
		},
		Queue: QueueConfig{
			RedisURL:       "redis://localhost:6379",
			Name:           "hanoibench:attempts",
			ResultsChannel: "hanoibench:results",
			Concurrency:    4,
		},
		Server:     ServerConfig{Addr: ":8080"},
		Acceptance: AcceptanceConfig{Expression: "goal_achieved"},
	}
}

// Load reads path on top of the defaults and applies environment
// overrides. A missing file yields the defaults.
func Load(workspace, path string) (*Config, error) {
	if path == "" {
		path = Path(workspace)
	}
	cfg := Default(workspace)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func (c *Config) applyEnv() {
	c.Store.DSN = envOrDefault(EnvStoreDSN, c.Store.DSN)
	c.Telemetry.MQTT.Broker = envOrDefault(EnvMQTTURL, c.Telemetry.MQTT.Broker)
	c.Queue.RedisURL = envOrDefault(EnvRedisURL, c.Queue.RedisURL)
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "file", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("store.driver %q is not one of file, sqlite, postgres", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return errors.New("store.dsn is empty")
	}
	if c.Queue.Concurrency < 0 {
		return fmt.Errorf("queue.concurrency must not be negative, got %d", c.Queue.Concurrency)
	}
	return nil
}

// Save writes the configuration to path, creating directories.
func (c *Config) Save(path string) error {
	if c == nil {
		return errors.New("config missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
