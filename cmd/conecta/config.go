package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	conecta "github.com/Freidergandica/conecta-go"
)

// Config holds CLI configuration merged from files, environment and flags.
type Config struct {
	CommerceID string        `mapstructure:"commerce_id"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	LogFormat  string        `mapstructure:"log_format"`
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"commerce":   "commerce_id",
	"base-url":   "base_url",
	"timeout":    "timeout",
	"log-format": "log_format",
}

// loadConfig merges, lowest precedence first: defaults, the global config
// file, the project config file (or --config), CONECTA_* environment
// variables and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetDefault("base_url", conecta.DefaultBaseURL)
	v.SetDefault("timeout", conecta.DefaultTimeouts.RequestTimeout)
	v.SetDefault("log_format", "text")

	v.SetConfigType("yaml")
	paths := []string{GlobalConfigPath(), ProjectConfigPath()}
	if explicit, _ := cmd.Flags().GetString("config"); explicit != "" {
		paths = []string{explicit}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) && len(paths) > 1 {
				continue
			}
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("CONECTA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".conecta", "config.yaml")
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".conecta", "config.yaml")
}
