// internal/config/config.go

package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// DefaultSecretName is used when SECRET_NAME is unset.
	DefaultSecretName = "db-password"
	// DefaultAddr binds all interfaces on port 8080.
	DefaultAddr = "0.0.0.0:8080"

	ProviderGCP   = "gcp"
	ProviderAWS   = "aws"
	ProviderAzure = "azure"
)

var (
	ErrMissingProjectID = errors.New("PROJECT_ID environment variable is not set")
	ErrMissingVaultName = errors.New("KEY_VAULT_NAME environment variable is not set")
	ErrUnknownProvider  = errors.New("unknown secret provider")
)

// Config holds everything the server reads from the environment. It is built
// once at start-up and is read-only afterwards.
type Config struct {
	ProjectID      string
	SecretName     string
	Provider       string
	Addr           string
	AWSRegion      string
	AWSEndpoint    string
	AzureVaultName string
	RateLimit      float64 // requests per second, 0 disables limiting
	RateBurst      int
	LogLevel       string
}

// env key -> config key
var bindings = map[string]string{
	"project_id":     "PROJECT_ID",
	"secret_name":    "SECRET_NAME",
	"provider":       "SECRET_PROVIDER",
	"aws_region":     "AWS_REGION",
	"aws_endpoint":   "AWS_ENDPOINT_URL_SECRETSMANAGER",
	"key_vault_name": "KEY_VAULT_NAME",
	"rate_limit":     "RATE_LIMIT_RPS",
	"rate_burst":     "RATE_LIMIT_BURST",
	"log_level":      "LOG_LEVEL",
}

// Load reads an optional .env file and then the process environment.
// It never fails on missing values; call Validate for that.
func Load(logger *zap.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found. Proceeding with environment variables.")
	}

	v := viper.New()
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, errors.Wrapf(err, "bind %s", env)
		}
	}
	v.SetDefault("secret_name", DefaultSecretName)
	v.SetDefault("provider", ProviderGCP)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("rate_burst", 1)
	v.SetDefault("log_level", "info")

	cfg := Config{
		ProjectID:      strings.TrimSpace(v.GetString("project_id")),
		SecretName:     v.GetString("secret_name"),
		Provider:       strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
		Addr:           DefaultAddr,
		AWSRegion:      v.GetString("aws_region"),
		AWSEndpoint:    v.GetString("aws_endpoint"),
		AzureVaultName: v.GetString("key_vault_name"),
		RateLimit:      v.GetFloat64("rate_limit"),
		RateBurst:      v.GetInt("rate_burst"),
		LogLevel:       v.GetString("log_level"),
	}

	// An explicitly empty SECRET_NAME still falls back to the default.
	if cfg.SecretName == "" {
		cfg.SecretName = DefaultSecretName
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 1
	}

	return cfg, nil
}

// Validate reports configuration that makes every request fail.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGCP:
		if c.ProjectID == "" {
			return ErrMissingProjectID
		}
	case ProviderAWS:
	case ProviderAzure:
		if c.AzureVaultName == "" {
			return ErrMissingVaultName
		}
	default:
		return errors.Wrapf(ErrUnknownProvider, "%q", c.Provider)
	}
	return nil
}
