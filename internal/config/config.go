// Package config loads and validates the service configuration from
// command-line flags, environment variables and an optional .env file.
// Flags provide the defaults; environment variables override them.
package config

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config carries every runtime setting. It is constructed once in main
// and passed explicitly to the components that need it.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	ShortURLBase        string        `env:"BASE_URL" validate:"url"`
	DocsURL             string        `env:"DOCS_URL" validate:"url"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`
	TokenSecret         string        `env:"TOKEN_SECRET" validate:"required"`
	TokenAlgorithm      string        `env:"TOKEN_ALGORITHM" validate:"oneof=HS256 HS384 HS512"`
	TokenTTL            time.Duration `env:"TOKEN_TTL"`
	EmailDomains        []string      `env:"EMAIL_DOMAINS" envSeparator:"," validate:"min=1"`
	RedisAddr           string        `env:"REDIS_ADDR"`
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func (c *Config) validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("config validation: token TTL must be positive, got %s", c.TokenTTL)
	}

	return nil
}

// InitOption customizes New's behavior.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips command-line flag parsing, which is
// required when the configuration is built inside tests.
func WithDisableFlagsParsing(disable bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disable
	}
}

// New builds the configuration from defaults, flags and environment.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	cfg := &Config{
		RunAddr:             ":8080",
		ShortURLBase:        "http://localhost:8080",
		DocsURL:             "http://localhost:8080/docs",
		LogLevel:            "info",
		DBConnectionTimeout: 10 * time.Second,
		MigrationsDir:       "cmd/chote/migrations",
		TokenSecret:         "chote-dev-secret",
		TokenAlgorithm:      "HS256",
		TokenTTL:            10 * time.Minute,
		EmailDomains:        []string{"gmail.com", "cvr.ac.in"},
	}

	var emailDomains string
	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.ShortURLBase, "b", cfg.ShortURLBase, "base address of the resulting shortened URL")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database connection string")
		flag.StringVar(&cfg.TokenSecret, "s", cfg.TokenSecret, "token signing secret")
		flag.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address for the redirect cache")
		flag.StringVar(&emailDomains, "e", "", "comma-separated email domain allowlist")
		flag.Parse()

		if emailDomains != "" {
			cfg.EmailDomains = strings.Split(emailDomains, ",")
		}
	}

	valuesFromEnv := Config{}
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		cfg.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.ShortURLBase != "" {
		cfg.ShortURLBase = valuesFromEnv.ShortURLBase
	}

	if valuesFromEnv.DocsURL != "" {
		cfg.DocsURL = valuesFromEnv.DocsURL
	}

	if valuesFromEnv.LogLevel != "" {
		cfg.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DatabaseDSN != "" {
		cfg.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		cfg.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		cfg.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.TokenSecret != "" {
		cfg.TokenSecret = valuesFromEnv.TokenSecret
	}

	if valuesFromEnv.TokenAlgorithm != "" {
		cfg.TokenAlgorithm = valuesFromEnv.TokenAlgorithm
	}

	if valuesFromEnv.TokenTTL != 0 {
		cfg.TokenTTL = valuesFromEnv.TokenTTL
	}

	if len(valuesFromEnv.EmailDomains) > 0 {
		cfg.EmailDomains = valuesFromEnv.EmailDomains
	}

	if valuesFromEnv.RedisAddr != "" {
		cfg.RedisAddr = valuesFromEnv.RedisAddr
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
