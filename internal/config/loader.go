package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides the api_key from the config file when set.
const APIKeyEnv = "MAPS_API_KEY"

// RequiredAddresses must be present in the addresses map.
var RequiredAddresses = []string{"Home", "Work"}

// DefaultPaths are tried in order when no explicit path is given.
var DefaultPaths = []string{"commutes.yml", "commutes.yaml", "config/commutes.yml"}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	return Config{
		Commutes: []Commute{
			{Name: "Work to Home", Origin: "Work", Destination: "Home"},
		},
		TrafficModels: []string{"best_guess", "pessimistic", "optimistic"},
		Grid: GridConfig{
			Days:            7,
			StartHour:       14,
			EndHour:         19,
			IntervalMinutes: 15,
		},
		Output: OutputConfig{
			Dir:     ".",
			GeoJSON: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  "commutes.log",
		},
		HTTP: HTTPConfig{
			BaseURL:   "https://maps.googleapis.com",
			TimeoutMS: 10000,
		},
	}
}

// Load reads .env (if present), then the YAML config at path, or the first
// of DefaultPaths that exists when path is empty. The result is validated.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := readFirst(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags, that Home and Work addresses are set, and
// that every commute refers to a known address.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	for _, name := range RequiredAddresses {
		if strings.TrimSpace(c.Addresses[name]) == "" {
			return fmt.Errorf("addresses: %s is required", name)
		}
	}
	for _, cm := range c.Commutes {
		if _, ok := c.Addresses[cm.Origin]; !ok {
			return fmt.Errorf("commute %q: unknown origin address %q", cm.Name, cm.Origin)
		}
		if _, ok := c.Addresses[cm.Destination]; !ok {
			return fmt.Errorf("commute %q: unknown destination address %q", cm.Name, cm.Destination)
		}
	}
	return nil
}

func readFirst(path string) ([]byte, error) {
	paths := DefaultPaths
	if path != "" {
		paths = []string{path}
	}
	var lastErr error
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("read config: %w", lastErr)
}
