package config

import "time"

// Commute names an origin/destination pair by address keys.
type Commute struct {
	Name        string `yaml:"name" validate:"required"`
	Origin      string `yaml:"origin" validate:"required"`
	Destination string `yaml:"destination" validate:"required"`
}

// GridConfig controls the departure time grid.
type GridConfig struct {
	Days            int `yaml:"days" validate:"gt=0"`
	StartHour       int `yaml:"startHour" validate:"gte=0,lte=23"`
	EndHour         int `yaml:"endHour" validate:"gte=0,lte=23,gtfield=StartHour"`
	IntervalMinutes int `yaml:"intervalMinutes" validate:"gt=0"`
}

// OutputConfig controls where tables are persisted.
type OutputConfig struct {
	Dir     string `yaml:"dir" validate:"required"`
	GeoJSON bool   `yaml:"geojson"`
	SQLite  string `yaml:"sqlite"` // empty disables the SQLite sink
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

// HTTPConfig controls the directions client.
type HTTPConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"required,url"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gt=0"`
}

// Config is the root configuration structure.
type Config struct {
	APIKey        string            `yaml:"api_key" validate:"required"`
	Addresses     map[string]string `yaml:"addresses" validate:"required"`
	Commutes      []Commute         `yaml:"commutes" validate:"required,min=1,dive"`
	TrafficModels []string          `yaml:"traffic_models" validate:"required,min=1,dive,oneof=best_guess pessimistic optimistic"`
	Grid          GridConfig        `yaml:"grid"`
	Output        OutputConfig      `yaml:"output"`
	Log           LogConfig         `yaml:"log"`
	HTTP          HTTPConfig        `yaml:"http"`
}

// Timeout returns the directions request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMS) * time.Millisecond
}

// Interval returns the grid step.
func (g GridConfig) Interval() time.Duration {
	return time.Duration(g.IntervalMinutes) * time.Minute
}
