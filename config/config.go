// Package config assembles the settings for a test run.
//
// Settings are layered: built-in defaults, then an optional YAML file, then environment
// variables (which may come from a .env file), then command-line flags, which the main
// package applies on top of what Load returns.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultTimeout = 30 * time.Second

	// DefaultUnknownPath is a path that the service does not route.
	DefaultUnknownPath = "/api/nonexistent"
)

type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Config struct {
	BaseURL string `yaml:"url"`

	Admin   Credentials `yaml:"admin"`
	Guest   Credentials `yaml:"guest"`
	Invalid Credentials `yaml:"invalid"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// IdentityMarker must appear in the body of the service root.
	IdentityMarker string `yaml:"identity"`

	// FixturePath is a YAML fixture file to upload instead of the built-in document.
	FixturePath string `yaml:"fixture"`

	UnknownPath string `yaml:"unknownPath"`
}

// Default returns the settings that match a stock local deployment of the service.
func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Admin:          Credentials{Username: "admin", Password: "autolearn2024"},
		Guest:          Credentials{Username: "guest", Password: "guest"},
		Invalid:        Credentials{Username: "invalid", Password: "wrong"},
		Timeout:        DefaultTimeout,
		IdentityMarker: servicedef.DefaultIdentityMarker,
		UnknownPath:    DefaultUnknownPath,
	}
}

// Load builds a Config from defaults, the YAML file at configFile if it is not empty, and
// environment variables. If envFile is not empty it is loaded into the environment first;
// variables that are already set are not overwritten.
func Load(envFile, configFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if configFile != "" {
		if err := cfg.mergeFile(configFile); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	c.BaseURL = envOrDefault("AUTOLEARN_URL", c.BaseURL)
	c.Admin.Username = envOrDefault("AUTOLEARN_ADMIN_USER", c.Admin.Username)
	c.Admin.Password = envOrDefault("AUTOLEARN_ADMIN_PASSWORD", c.Admin.Password)
	c.Guest.Username = envOrDefault("AUTOLEARN_GUEST_USER", c.Guest.Username)
	c.Guest.Password = envOrDefault("AUTOLEARN_GUEST_PASSWORD", c.Guest.Password)
	c.IdentityMarker = envOrDefault("AUTOLEARN_IDENTITY", c.IdentityMarker)
	c.FixturePath = envOrDefault("AUTOLEARN_FIXTURE", c.FixturePath)

	timeoutSeconds, err := parseIntEnv("AUTOLEARN_TIMEOUT_SECONDS", 0)
	if err != nil {
		return fmt.Errorf("parse AUTOLEARN_TIMEOUT_SECONDS: %w", err)
	}
	if timeoutSeconds != 0 {
		c.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return nil
}

// Validate reports the first setting that would make a run meaningless.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid service URL %q: %w", c.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid service URL %q: must be an absolute http or https URL", c.BaseURL)
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		return errors.New("admin credentials are required")
	}
	if c.Guest.Username == "" || c.Guest.Password == "" {
		return errors.New("guest credentials are required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, was %s", c.Timeout)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseInt(value, 10, 64)
}
