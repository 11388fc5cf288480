package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/pankaj-dahiya-devops/s3check/internal/logging"
)

// Configuration keys. Flag names use hyphens; keys use underscores.
const (
	KeyProfile        = "profile"
	KeyRegion         = "region"
	KeyEndpoint       = "endpoint"
	KeyUsePathStyle   = "use_path_style"
	KeyOutput         = "output"
	KeyFormat         = "format"
	KeyVerifyIdentity = "verify_identity"
	KeyLogLevel       = "log_level"
	KeyInclude        = "include"
)

const (
	// DefaultOutput is written to the working directory and overwritten on
	// every run.
	DefaultOutput = "s3_report.csv"

	// DefaultJSONOutput replaces DefaultOutput when the format is json and
	// no output path was given.
	DefaultJSONOutput = "s3_report.json"

	// DefaultFormat is the export format when none is given.
	DefaultFormat = "csv"

	// EnvPrefix is prepended to upper-cased keys, e.g. S3CHECK_OUTPUT.
	EnvPrefix = "S3CHECK"

	configName = "s3check"
)

// Config is the resolved configuration for one audit run. Values come from,
// in priority order: command-line flags, S3CHECK_* environment variables, an
// optional s3check.yaml file, and the defaults in SetDefaults.
type Config struct {
	// Profile is the AWS profile name. Empty means the default credential chain.
	Profile string `mapstructure:"profile" yaml:"profile"`

	// Region overrides the profile's region.
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint points the S3 client at an S3-compatible store.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// UsePathStyle forces path-style bucket addressing.
	UsePathStyle bool `mapstructure:"use_path_style" yaml:"use_path_style"`

	// Output is the export file path. Empty selects DefaultOutputFor(Format).
	Output string `mapstructure:"output" yaml:"output"`

	// Format selects the export encoding: "csv" or "json".
	Format string `mapstructure:"format" yaml:"format"`

	// VerifyIdentity runs an STS identity check before listing buckets.
	VerifyIdentity bool `mapstructure:"verify_identity" yaml:"verify_identity"`

	// LogLevel is the zap level for diagnostics written to stderr.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// Include limits the audit to bucket names matching any of these globs.
	Include []string `mapstructure:"include" yaml:"include"`

	// ConfigFile is the config file that was read, if any. Not a config key.
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

// SetDefaults registers the default value of every key on v. Every key must
// have a default so AutomaticEnv can populate it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyProfile, "")
	v.SetDefault(KeyRegion, "")
	v.SetDefault(KeyEndpoint, "")
	v.SetDefault(KeyUsePathStyle, false)
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyFormat, DefaultFormat)
	v.SetDefault(KeyVerifyIdentity, true)
	v.SetDefault(KeyLogLevel, logging.DefaultLevel)
	v.SetDefault(KeyInclude, []string{})
}

// Load resolves a Config from v. When configFile is set it must exist;
// otherwise s3check.yaml is looked up in the working directory and in
// ~/.config/s3check, and its absence is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", configFile, err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if strings.TrimSpace(cfg.Output) == "" {
		cfg.Output = DefaultOutputFor(cfg.Format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultOutputFor returns the export path used when none is configured.
func DefaultOutputFor(format string) string {
	if format == "json" {
		return DefaultJSONOutput
	}
	return DefaultOutput
}

// Validate reports the first invalid field in c.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output path must not be empty")
	}
	switch c.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("unsupported format %q: expected csv or json", c.Format)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, p := range c.Include {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid include pattern %q", p)
		}
	}
	return nil
}
