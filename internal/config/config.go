// Package config resolves server settings from command line flags, the
// environment and an optional .env file, in that order of precedence.
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
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
)

const (
	DefaultPort            = 3000
	DefaultTokenTTL        = 12 * time.Hour
	DefaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Port            int
	JWTSecret       string
	TokenTTL        time.Duration
	LogFile         string
	Verbose         bool
	Seed            []string
	DevToken        bool
	MintToken       bool
	ShutdownTimeout time.Duration
	AllowedOrigin   string
}

// LoadDotEnv loads variables from path into the process environment.
// A missing file is not an error; existing variables are never overridden.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags parses args and falls back to environment variables for any
// flag that was not given explicitly.
func ParseFlags(args []string) (Config, error) {
	return parse(args, os.Getenv)
}

func parse(args []string, getenv func(string) string) (Config, error) {
	var cfg Config

	flags := pflag.NewFlagSet("secretsanta", pflag.ContinueOnError)
	flags.IntVarP(&cfg.Port, "port", "p", DefaultPort, "Server port (env PORT)")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Shared secret for bearer tokens (prefer env JWT_SECRET)")
	flags.DurationVar(&cfg.TokenTTL, "token-ttl", DefaultTokenTTL, "Lifetime of minted tokens (env TOKEN_TTL)")
	flags.StringVar(&cfg.LogFile, "log-file", "", "Append logs to this file (env LOG_FILE)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose logging (env VERBOSE)")
	flags.StringSliceVar(&cfg.Seed, "seed", nil, "Participant names to preload (env SEED_PARTICIPANTS)")
	flags.BoolVar(&cfg.DevToken, "dev-token", false, "Include a test token in the participant list (env DEV_TOKEN)")
	flags.BoolVar(&cfg.MintToken, "mint-token", false, "Print a signed admin token and exit")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", DefaultShutdownTimeout, "Graceful shutdown timeout (env SHUTDOWN_TIMEOUT)")
	flags.StringVar(&cfg.AllowedOrigin, "allowed-origin", "*", "Value of Access-Control-Allow-Origin (env ALLOWED_ORIGIN)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	var err error
	if !flags.Changed("port") {
		if v := getenv("PORT"); v != "" {
			port, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = multierr.Append(err, fmt.Errorf("invalid PORT env variable %q", v))
			} else {
				cfg.Port = port
			}
		}
	}
	if !flags.Changed("jwt-secret") {
		cfg.JWTSecret = getenv("JWT_SECRET")
	}
	if !flags.Changed("token-ttl") {
		err = multierr.Append(err, durationFromEnv(getenv, "TOKEN_TTL", &cfg.TokenTTL))
	}
	if !flags.Changed("shutdown-timeout") {
		err = multierr.Append(err, durationFromEnv(getenv, "SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout))
	}
	if !flags.Changed("log-file") {
		cfg.LogFile = getenv("LOG_FILE")
	}
	if !flags.Changed("verbose") {
		err = multierr.Append(err, boolFromEnv(getenv, "VERBOSE", &cfg.Verbose))
	}
	if !flags.Changed("dev-token") {
		err = multierr.Append(err, boolFromEnv(getenv, "DEV_TOKEN", &cfg.DevToken))
	}
	if !flags.Changed("seed") {
		if v := getenv("SEED_PARTICIPANTS"); v != "" {
			cfg.Seed = strings.Split(v, ",")
		}
	}
	if !flags.Changed("allowed-origin") {
		if v := getenv("ALLOWED_ORIGIN"); v != "" {
			cfg.AllowedOrigin = v
		}
	}

	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var err error
	if c.Port < 1 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.JWTSecret == "" {
		err = multierr.Append(err, errors.New("JWT_SECRET required (use --jwt-secret or JWT_SECRET env)"))
	}
	if c.TokenTTL <= 0 {
		err = multierr.Append(err, errors.New("token TTL must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		err = multierr.Append(err, errors.New("shutdown timeout must be positive"))
	}
	return err
}

func durationFromEnv(getenv func(string) string, key string, dst *time.Duration) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable %q", key, v)
	}
	*dst = d
	return nil
}

func boolFromEnv(getenv func(string) string, key string, dst *bool) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable %q", key, v)
	}
	*dst = b
	return nil
}
