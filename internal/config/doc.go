// Package config loads the commutes configuration from a YAML file, a .env
// file and the process environment.
package config
