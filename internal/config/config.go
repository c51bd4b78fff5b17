// Package config loads the service configuration and owns the shared DB handle.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Model    ModelConfig    `yaml:"model"`
	Datasets DatasetsConfig `yaml:"datasets"`
	NER      NERConfig      `yaml:"ner"`
	Amadeus  AmadeusConfig  `yaml:"amadeus"`
	ZoomCar  ZoomCarConfig  `yaml:"zoomcar"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	GinMode      string        `yaml:"gin_mode"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	// WSWordDelay paces streamed chat words; negative disables pacing.
	WSWordDelay time.Duration `yaml:"ws_word_delay"`
}

// DatabaseConfig selects the SQL driver: "mysql" or "sqlite3".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type ModelConfig struct {
	Path         string `yaml:"path"`
	TrainingData string `yaml:"training_data"`
	MaxFeatures  int    `yaml:"max_features"`
}

type DatasetsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// NERConfig selects the entity tagger: "gazetteer" (offline) or "http".
type NERConfig struct {
	Provider string        `yaml:"provider"`
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

type AmadeusConfig struct {
	BaseURL      string        `yaml:"base_url"`
	OnTimeURL    string        `yaml:"on_time_url"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Timeout      time.Duration `yaml:"timeout"`
}

type ZoomCarConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type JobsConfig struct {
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	CachePurgeInterval time.Duration `yaml:"cache_purge_interval"`
	AdvisoryInterval   time.Duration `yaml:"advisory_interval"`
}

type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Load reads the YAML file at path, applies defaults and then environment
// overrides. An empty path or a missing file yields defaults plus env.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	ApplyDefaults(&cfg)
	ApplyEnv(&cfg)
	return &cfg, nil
}
