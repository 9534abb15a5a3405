package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Metro-North endpoints.
const (
	DefaultRealtimeURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/mnr%2Fgtfs-mnr"
	DefaultStaticURL   = "http://web.mta.info/developers/data/mnr/google_transit.zip"
)

// Config is the global application configuration
var Config AppConfig

// DefaultPaths are searched in order by LoadAppConfig.
var DefaultPaths = []string{"config.yml", "config.yaml", "./configs/config.yml"}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 16181},
		Feed: FeedConfig{
			Name:         "mnr",
			RealtimeURL:  DefaultRealtimeURL,
			StaticURL:    DefaultStaticURL,
			APIKeyEnv:    "MTA_API_KEY",
			APIKeyHeader: "x-api-key",
			TimeoutMS:    10000,
		},
		Arrivals: ArrivalsConfig{
			Count:                 3,
			Timezone:              "America/New_York",
			ScheduleCutoffMinutes: 30,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// LoadAppConfig loads the first config file found in DefaultPaths into
// Config. Defaults are used when none exists.
func LoadAppConfig() error {
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			cfg, err := Load(p)
			if err != nil {
				return err
			}
			Config = *cfg
			return nil
		}
	}
	cfg, err := Parse(nil)
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// Load reads, defaults and validates the YAML file at path.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays data on Default, resolves the API key and validates.
func Parse(data []byte) (*AppConfig, error) {
	cfg := Default()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	// A missing .env file is not an error; the key may come from the environment.
	_ = godotenv.Load()
	cfg.Feed.APIKey = os.Getenv(cfg.Feed.APIKeyEnv)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location loads the configured timezone.
func (c AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Arrivals.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Arrivals.Timezone, err)
	}
	return loc, nil
}

// Timeout returns the feed request timeout.
func (c AppConfig) Timeout() time.Duration {
	return time.Duration(c.Feed.TimeoutMS) * time.Millisecond
}

// ScheduleCutoff returns how far back the board lists scheduled trains.
func (c AppConfig) ScheduleCutoff() time.Duration {
	return time.Duration(c.Arrivals.ScheduleCutoffMinutes) * time.Minute
}

// ErrNoStop is returned when neither a stop id nor a stop name is configured.
var ErrNoStop = errors.New("no stop configured: set stop.id or stop.name")
