package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/disburse/internal/allocator"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "disburse.yaml"

// Config represents the top-level disburse.yaml configuration.
type Config struct {
	Log               LogConfig               `mapstructure:"log" yaml:"log"`
	Owner             OwnerConfig             `mapstructure:"owner" yaml:"owner"`
	Source            SourceConfig            `mapstructure:"source" yaml:"source"`
	ReferenceAccounts ReferenceAccountsConfig `mapstructure:"reference_accounts" yaml:"reference_accounts"`
	Policy            PolicyConfig            `mapstructure:"policy" yaml:"policy"`
	Report            ReportConfig            `mapstructure:"report" yaml:"report"`
	Storage           StorageConfig           `mapstructure:"storage" yaml:"storage"`
	Server            ServerConfig            `mapstructure:"server" yaml:"server"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// OwnerConfig holds the owner used when a run does not name one.
type OwnerConfig struct {
	DefaultID string `mapstructure:"default_id" yaml:"default_id,omitempty"`
}

// SourceConfig selects where account records come from.
type SourceConfig struct {
	Kind        string `mapstructure:"kind" yaml:"kind"` // "file" or "postgres"
	Path        string `mapstructure:"path" yaml:"path,omitempty"`
	DatabaseURL string `mapstructure:"database_url" yaml:"-"`
	Table       string `mapstructure:"table" yaml:"table,omitempty"`
}

// ReferenceAccountsConfig locates the platform-fee and expense account registry.
type ReferenceAccountsConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// PolicyConfig holds the allocation constants as decimal strings.
type PolicyConfig struct {
	Threshold        string   `mapstructure:"threshold" yaml:"threshold"`
	RentRatio        string   `mapstructure:"rent_ratio" yaml:"rent_ratio"`
	TaxRate          string   `mapstructure:"tax_rate" yaml:"tax_rate"`
	ExemptOwnerships []string `mapstructure:"exempt_ownerships" yaml:"exempt_ownerships"`
}

// ReportConfig controls the generated report.
type ReportConfig struct {
	Format    string `mapstructure:"format" yaml:"format"` // "xlsx" or "csv"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	FileName  string `mapstructure:"file_name" yaml:"file_name,omitempty"`
}

// StorageConfig controls the optional S3 upload of reports.
type StorageConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Region          string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint,omitempty"` // MinIO/LocalStack
	Prefix          string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"-"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"-"`
}

// ServerConfig controls the HTTP trigger.
type ServerConfig struct {
	Port string `mapstructure:"port" yaml:"port"`
}

// Load reads a disburse.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file. Secrets are never written.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new working directory.
func Default() *Config {
	p := allocator.DefaultPolicy()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Source: SourceConfig{
			Kind: "file",
			Path: "data/records.json",
		},
		ReferenceAccounts: ReferenceAccountsConfig{
			Path: "data/reference-accounts.csv",
		},
		Policy: PolicyConfig{
			Threshold:        p.MonthlyThreshold.String(),
			RentRatio:        p.RentRatio.String(),
			TaxRate:          p.TaxRate.String(),
			ExemptOwnerships: p.ExemptOwnerships,
		},
		Report: ReportConfig{
			Format:    "xlsx",
			OutputDir: "reports",
		},
		Storage: StorageConfig{
			Region: "us-east-1",
			Prefix: "disbursements",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// AllocatorPolicy converts the policy section into allocator.Policy.
func (c *Config) AllocatorPolicy() (allocator.Policy, error) {
	threshold, err := decimal.NewFromString(c.Policy.Threshold)
	if err != nil {
		return allocator.Policy{}, fmt.Errorf("policy.threshold: %w", err)
	}
	ratio, err := decimal.NewFromString(c.Policy.RentRatio)
	if err != nil {
		return allocator.Policy{}, fmt.Errorf("policy.rent_ratio: %w", err)
	}
	tax, err := decimal.NewFromString(c.Policy.TaxRate)
	if err != nil {
		return allocator.Policy{}, fmt.Errorf("policy.tax_rate: %w", err)
	}
	return allocator.Policy{
		MonthlyThreshold: threshold,
		RentRatio:        ratio,
		TaxRate:          tax,
		ExemptOwnerships: c.Policy.ExemptOwnerships,
	}, nil
}
