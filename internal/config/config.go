package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default values
const (
	DefaultFeedURL         = "https://rss.itunes.apple.com/api/v1/us/ios-apps/top-paid/all/50/explicit.atom"
	DefaultFeedLimit       = 50
	DefaultIconSize        = 48
	DefaultCancelOffscreen = false
	DefaultLanguage        = "system"
	DefaultEnvFile         = ".env"
)

// Bounds for numeric settings
const (
	MinIconSize  = 16
	MaxIconSize  = 512
	MaxFeedLimit = 200
)

// Environment variables read by FromEnv
const (
	EnvFeedURL         = "LAZYICONS_FEED_URL"
	EnvFeedLimit       = "LAZYICONS_FEED_LIMIT"
	EnvIconSize        = "LAZYICONS_ICON_SIZE"
	EnvCancelOffscreen = "LAZYICONS_CANCEL_OFFSCREEN"
	EnvInsecureHosts   = "LAZYICONS_INSECURE_HOSTS"
	EnvLanguage        = "LAZYICONS_LANGUAGE"
)

// Config is the effective application configuration
type Config struct {
	FeedURL         string
	FeedLimit       int
	IconSize        int
	CancelOffscreen bool // cancel icon fetches for rows that scroll out of view
	InsecureHosts   []string
	Language        string
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		FeedURL:         DefaultFeedURL,
		FeedLimit:       DefaultFeedLimit,
		IconSize:        DefaultIconSize,
		CancelOffscreen: DefaultCancelOffscreen,
		Language:        DefaultLanguage,
	}
}

// Policy returns the transport policy derived from the configuration
func (c Config) Policy() TransportPolicy {
	return TransportPolicy{InsecureHosts: c.InsecureHosts}
}

// ConfigError reports a configuration that must stop the app at startup.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Validate checks the configuration, including the transport policy for the
// feed endpoint. Any failure is a *ConfigError.
func (c Config) Validate() error {
	for _, h := range c.InsecureHosts {
		if err := validateHost(h); err != nil {
			return &ConfigError{Field: "insecure_hosts", Value: h, Err: err}
		}
	}
	if strings.TrimSpace(c.FeedURL) == "" {
		return &ConfigError{Field: "feed_url", Value: c.FeedURL, Err: errors.New("must not be empty")}
	}
	if err := c.Policy().Check(c.FeedURL); err != nil {
		return &ConfigError{Field: "feed_url", Value: c.FeedURL, Err: err}
	}
	if c.FeedLimit < 1 || c.FeedLimit > MaxFeedLimit {
		return &ConfigError{Field: "feed_limit", Value: strconv.Itoa(c.FeedLimit),
			Err: fmt.Errorf("must be between 1 and %d", MaxFeedLimit)}
	}
	if c.IconSize < MinIconSize || c.IconSize > MaxIconSize {
		return &ConfigError{Field: "icon_size", Value: strconv.Itoa(c.IconSize),
			Err: fmt.Errorf("must be between %d and %d", MinIconSize, MaxIconSize)}
	}
	return nil
}

func validateHost(h string) error {
	h = strings.TrimPrefix(strings.TrimSpace(h), ".")
	if h == "" {
		return errors.New("empty host")
	}
	if strings.ContainsAny(h, "/:@ ") {
		return errors.New("expected a bare host name")
	}
	if u, err := url.Parse("http://" + h); err != nil || u.Hostname() != h {
		return errors.New("malformed host name")
	}
	return nil
}

// FromEnv builds a configuration from defaults overridden by LAZYICONS_*
// environment variables. envFiles are loaded first with godotenv (values
// already present in the environment win). A missing default .env file is
// not an error; a missing explicitly named file is.
func FromEnv(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			envFiles = []string{DefaultEnvFile}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := Default()
	if v := os.Getenv(EnvFeedURL); v != "" {
		cfg.FeedURL = v
	}
	if v := os.Getenv(EnvFeedLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, &ConfigError{Field: "feed_limit", Value: v, Err: err}
		}
		cfg.FeedLimit = n
	}
	if v := os.Getenv(EnvIconSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, &ConfigError{Field: "icon_size", Value: v, Err: err}
		}
		cfg.IconSize = n
	}
	if v := os.Getenv(EnvCancelOffscreen); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, &ConfigError{Field: "cancel_offscreen", Value: v, Err: err}
		}
		cfg.CancelOffscreen = b
	}
	if v := os.Getenv(EnvInsecureHosts); v != "" {
		cfg.InsecureHosts = ParseHostList(v)
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		cfg.Language = v
	}
	return cfg, nil
}
