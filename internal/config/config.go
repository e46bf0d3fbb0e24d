// Package config loads service configuration in layers: built-in defaults,
// then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"brainarcade/internal/difficulty"
	"brainarcade/internal/logging"
	"brainarcade/internal/recommend"
	"brainarcade/internal/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix lets any key be set from the environment: BRAINARCADE_TUNING__DIFFICULTY__MAX_DELTA
// sets tuning.difficulty.max_delta.
const EnvPrefix = "BRAINARCADE_"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/brainarcade/config.yaml",
}

type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Mongo   MongoConfig    `koanf:"mongo"`
	Redis   RedisConfig    `koanf:"redis"`
	Auth    AuthConfig     `koanf:"auth"`
	Oracle  OracleConfig   `koanf:"oracle"`
	Catalog CatalogConfig  `koanf:"catalog"`
	Logging logging.Config `koanf:"logging"`
	Tuning  Tuning         `koanf:"tuning"`
}

type ServerConfig struct {
	Port            string        `koanf:"port" validate:"required,numeric"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type MongoConfig struct {
	URI      string `koanf:"uri" validate:"required"`
	Database string `koanf:"database" validate:"required"`
}

type RedisConfig struct {
	Addr       string        `koanf:"addr" validate:"required"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db" validate:"gte=0"`
	SessionTTL time.Duration `koanf:"session_ttl" validate:"gt=0"`
	ProfileTTL time.Duration `koanf:"profile_ttl" validate:"gt=0"`
}

// Address returns Addr without a redis:// scheme.
func (r RedisConfig) Address() string {
	return strings.TrimPrefix(r.Addr, "redis://")
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

type CatalogConfig struct {
	// Path to a catalog YAML file; empty uses the built-in catalog.
	Path string `koanf:"path"`
}

// Tuning groups every engine weight under one version string.
type Tuning struct {
	Version    string            `koanf:"version" validate:"required"`
	Telemetry  telemetry.Params  `koanf:"telemetry"`
	Difficulty difficulty.Params `koanf:"difficulty"`
	Recommend  recommend.Params  `koanf:"recommend"`
}

// DefaultTuning returns the stock weights.
func DefaultTuning() Tuning {
	return Tuning{
		Version:    "2026.10-default",
		Telemetry:  telemetry.DefaultParams(),
		Difficulty: difficulty.DefaultParams(),
		Recommend:  recommend.DefaultParams(),
	}
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "brainarcade",
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			SessionTTL: 2 * time.Hour,
			ProfileTTL: 5 * time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret: "super-secret-key-change-in-production",
			TokenTTL:  4 * time.Hour,
		},
		Oracle:  DefaultOracleConfig(),
		Logging: logging.Config{Level: "info", Format: "json"},
		Tuning:  DefaultTuning(),
	}
}

// Load builds the configuration from defaults, the config file and the environment.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file; an empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks struct constraints on the whole tree.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	return v.Struct(c)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings keeps the short variable names the deployment already uses.
var envMappings = map[string]string{
	"port":            "server.port",
	"http_port":       "server.port",
	"allowed_origins": "server.allowed_origins",
	"mongo_uri":       "mongo.uri",
	"mongo_database":  "mongo.database",
	"redis_addr":      "redis.addr",
	"redis_uri":       "redis.addr",
	"redis_password":  "redis.password",
	"jwt_secret":      "auth.jwt_secret",
	"oracle_base_url": "oracle.base_url",
	"oracle_api_key":  "oracle.api_key",
	"oracle_timeout":  "oracle.timeout",
	"catalog_path":    "catalog.path",
	"log_level":       "logging.level",
	"log_format":      "logging.format",
	"tuning_version":  "tuning.version",
}

// envTransformFunc maps an environment variable to a koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	if strings.HasPrefix(key, EnvPrefix) {
		path := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		return strings.ReplaceAll(path, "__", ".")
	}
	return envMappings[strings.ToLower(key)]
}
