package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DISBURSE_REPORT_FORMAT.
const EnvPrefix = "DISBURSE"

// Initialize loads configuration in layers: defaults, then the YAML file at
// path (or disburse.yaml in the working directory when path is empty), then
// environment variables. A .env file in the working directory is loaded first.
func Initialize(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Unprefixed names used by the deployment environment.
	for key, env := range map[string]string{
		"owner.default_id":          "USER_ID",
		"source.database_url":       "DATABASE_URL",
		"storage.access_key_id":     "AWS_ACCESS_KEY_ID",
		"storage.secret_access_key": "AWS_SECRET_ACCESS_KEY",
	} {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("owner.default_id", "")

	v.SetDefault("source.kind", d.Source.Kind)
	v.SetDefault("source.path", d.Source.Path)
	v.SetDefault("source.database_url", "")
	v.SetDefault("source.table", "")

	v.SetDefault("reference_accounts.path", d.ReferenceAccounts.Path)

	v.SetDefault("policy.threshold", d.Policy.Threshold)
	v.SetDefault("policy.rent_ratio", d.Policy.RentRatio)
	v.SetDefault("policy.tax_rate", d.Policy.TaxRate)
	v.SetDefault("policy.exempt_ownerships", d.Policy.ExemptOwnerships)

	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("report.output_dir", d.Report.OutputDir)
	v.SetDefault("report.file_name", "")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", d.Storage.Region)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.prefix", d.Storage.Prefix)

	v.SetDefault("server.port", d.Server.Port)
}

// Validate checks the values Initialize cannot coerce.
func Validate(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}

	switch cfg.Source.Kind {
	case "file":
		if cfg.Source.Path == "" {
			return fmt.Errorf("source.path is required for the file source")
		}
	case "postgres":
		if cfg.Source.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres source")
		}
	default:
		return fmt.Errorf("invalid source kind: %s (must be 'file' or 'postgres')", cfg.Source.Kind)
	}

	if cfg.Report.Format != "xlsx" && cfg.Report.Format != "csv" {
		return fmt.Errorf("invalid report format: %s (must be 'xlsx' or 'csv')", cfg.Report.Format)
	}

	p, err := cfg.AllocatorPolicy()
	if err != nil {
		return err
	}
	if p.MonthlyThreshold.IsNegative() {
		return fmt.Errorf("policy.threshold must not be negative, got: %s", p.MonthlyThreshold)
	}
	if p.RentRatio.IsNegative() || p.RentRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("policy.rent_ratio must be between 0 and 1, got: %s", p.RentRatio)
	}
	if p.TaxRate.IsNegative() {
		return fmt.Errorf("policy.tax_rate must not be negative, got: %s", p.TaxRate)
	}

	if cfg.Storage.Enabled && cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
