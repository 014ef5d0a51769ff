// Package config resolves service settings from positional arguments,
// environment variables (optionally seeded from a .env file) and defaults,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvPort               = "PORT"
	EnvAdminPort          = "ADMIN_PORT"
	EnvPersistenceAddr    = "PERSISTENCE_ADDR"
	EnvPersistenceTimeout = "PERSISTENCE_TIMEOUT"
	EnvShutdownTimeout    = "SHUTDOWN_TIMEOUT"
)

// Defaults
const (
	DefaultPort               = "8080"
	DefaultPersistenceAddr    = "localhost:8081"
	DefaultPersistenceTimeout = 5 * time.Second
	DefaultShutdownTimeout    = 10 * time.Second
)

// ErrInvalidPort is returned for ports that are not integers in 1..65535.
var ErrInvalidPort = errors.New("invalid port")

// Config holds the settings shared by the three services. Only the hash
// service reads the persistence fields. An empty AdminPort disables the
// listener serving health and API docs.
type Config struct {
	Port               string
	AdminPort          string
	PersistenceAddr    string
	PersistenceTimeout time.Duration
	ShutdownTimeout    time.Duration
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:               DefaultPort,
		PersistenceAddr:    DefaultPersistenceAddr,
		PersistenceTimeout: DefaultPersistenceTimeout,
		ShutdownTimeout:    DefaultShutdownTimeout,
	}
}

// Load reads .env files (".env" when none are given) into the environment
// without overriding variables that are already set, then resolves Config
// from the environment. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv resolves Config from the process environment.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	if v := lookup(EnvPort); v != "" {
		if cfg.Port, err = ParsePort(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvPort, err)
		}
	}
	if v := lookup(EnvAdminPort); v != "" {
		if cfg.AdminPort, err = ParsePort(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvAdminPort, err)
		}
	}
	if v := lookup(EnvPersistenceAddr); v != "" {
		cfg.PersistenceAddr = v
	}
	if cfg.PersistenceTimeout, err = durationEnv(EnvPersistenceTimeout, cfg.PersistenceTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv(EnvShutdownTimeout, cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other, after arguments are applied.
func (c Config) Validate() error {
	if c.AdminPort != "" && c.AdminPort == c.Port {
		return fmt.Errorf("%s %s: must differ from the service port", EnvAdminPort, c.AdminPort)
	}
	return nil
}

// ParsePort validates a decimal TCP port and returns it normalized.
func ParsePort(s string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidPort, s, err)
	}
	if n < 1 || n > 65535 {
		return "", fmt.Errorf("%w %q: out of range", ErrInvalidPort, s)
	}
	return strconv.Itoa(n), nil
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := lookup(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}
