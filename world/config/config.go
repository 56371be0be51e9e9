// Package config loads nuvl settings from defaults, an optional YAML file
// and NUVL_* environment variables, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Description table backends
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

const (
	envPrefix      = "NUVL"
	configDirName  = ".nuvl"
	configFileName = "config"
	configFileType = "yaml"
)

// Config is the effective configuration
type Config struct {
	Username string `mapstructure:"username" yaml:"username"`

	// DataDir resolves relative fact and description paths
	DataDir             string   `mapstructure:"data_dir" yaml:"data_dir"`
	Facts               []string `mapstructure:"facts" yaml:"facts"`
	Descriptions        string   `mapstructure:"descriptions" yaml:"descriptions"`
	Timezone            string   `mapstructure:"timezone" yaml:"timezone"`
	StartOfWeek         string   `mapstructure:"start_of_week" yaml:"start_of_week"`
	DescriptionsBackend string   `mapstructure:"descriptions_backend" yaml:"descriptions_backend"`
	DescriptionsDir     string   `mapstructure:"descriptions_dir" yaml:"descriptions_dir"`

	Progress ProgressConfig `mapstructure:"progress" yaml:"progress"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// ProgressConfig sets how many lines pass between load progress events
type ProgressConfig struct {
	Facts        int `mapstructure:"facts" yaml:"facts"`
	Descriptions int `mapstructure:"descriptions" yaml:"descriptions"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json" yaml:"json"`
	Level string `mapstructure:"level" yaml:"level"`
}

// SetDefaults registers every key so that environment variables are
// honored even when no config file mentions them
func SetDefaults(v *viper.Viper) {
	v.SetDefault("username", os.Getenv("USER"))
	v.SetDefault("data_dir", "")
	v.SetDefault("facts", []string{})
	v.SetDefault("descriptions", "")
	v.SetDefault("timezone", "Local")
	v.SetDefault("start_of_week", "monday")
	v.SetDefault("descriptions_backend", BackendMemory)
	v.SetDefault("descriptions_dir", "")

	v.SetDefault("progress.facts", 1000000)
	v.SetDefault("progress.descriptions", 10000000)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "warn")
}

// NewViper builds a viper instance with defaults and environment binding
// and reads cfgFile, or $HOME/.nuvl/config.yaml when cfgFile is empty.
// A missing default file is not an error; a missing explicit file is.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDirName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that are parsed later
func (c *Config) Validate() error {
	switch c.DescriptionsBackend {
	case BackendMemory, BackendBadger:
	default:
		return errors.Newf("descriptions_backend must be %q or %q, got %q",
			BackendMemory, BackendBadger, c.DescriptionsBackend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Weekday(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Empty and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "timezone %q", c.Timezone)
	}
	return loc, nil
}

// Weekday parses StartOfWeek, which is a case-insensitive English day name
// or its first three letters
func (c *Config) Weekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(c.StartOfWeek))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, errors.Newf("start_of_week %q is not a day of the week", c.StartOfWeek)
}

// FactPaths returns Facts with relative paths joined to DataDir
func (c *Config) FactPaths() []string {
	out := make([]string, len(c.Facts))
	for i, f := range c.Facts {
		out[i] = c.resolve(f)
	}
	return out
}

// DescriptionsPath returns Descriptions joined to DataDir, or "" if unset
func (c *Config) DescriptionsPath() string {
	if c.Descriptions == "" {
		return ""
	}
	return c.resolve(c.Descriptions)
}

func (c *Config) resolve(path string) string {
	if c.DataDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}
