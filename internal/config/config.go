package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Analysis parameters
	Clusters      int     `mapstructure:"clusters" yaml:"clusters"`
	MinSupport    float64 `mapstructure:"min_support" yaml:"min_support"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	Seed          int64   `mapstructure:"seed" yaml:"seed"`
	// Workers for parallel support counting; <2 means serial.
	Workers int `mapstructure:"workers" yaml:"workers"`

	// Input handling
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	SampleRows int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.basketlens/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".basketlens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BASKETLENS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("clusters", 3)
	v.SetDefault("min_support", 0.1)
	v.SetDefault("min_confidence", 0.5)
	v.SetDefault("seed", 1)
	v.SetDefault("workers", 1)
	v.SetDefault("delimiter", "")
	v.SetDefault("sample_rows", 5)
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".basketlens")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
