// Package config loads CLI configuration from ~/.apm/config.yaml and the
// environment into an explicit Config value. Components receive the value
// through their constructors; nothing reads viper at use sites.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apm-labs/apm/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// DefaultHost is the git host assumed when a package spec carries none
	// and no override is configured.
	DefaultHost = "github.com"
)

// Config carries every operator-tunable setting the resolution and
// integration components consume.
type Config struct {
	// GitHubHost overrides the default host for unqualified package specs
	// and extends the supported-host set. Empty means github.com.
	GitHubHost string

	// ExtraHosts are additional hosts accepted as git platforms, from the
	// comma-separated APM_GIT_HOSTS variable.
	ExtraHosts []string

	// Token authenticates API and raw-content requests when set.
	Token string

	// AutoIntegrate controls whether install runs the integration sync
	// automatically after resolution.
	AutoIntegrate bool
}

// ResolvedHost returns the host to use for specs that name none.
func (c Config) ResolvedHost() string {
	if c.GitHubHost != "" {
		return c.GitHubHost
	}
	return DefaultHost
}

// Dir returns the path to the APM config directory (~/.apm/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.apm/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load reads the config file and environment and returns the effective
// Config. A missing config file is not an error.
func Load() Config {
	v := viper.New()
	v.SetConfigFile(FilePath())
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	v.SetDefault("auto_integrate", true)

	// Ignore error if config file doesn't exist yet.
	_ = v.ReadInConfig()

	cfg := Config{
		GitHubHost:    v.GetString("github.host"),
		Token:         v.GetString("github.token"),
		AutoIntegrate: v.GetBool("auto_integrate"),
	}

	// GITHUB_HOST is the conventional override; it wins over the file.
	if h := os.Getenv("GITHUB_HOST"); h != "" {
		cfg.GitHubHost = h
	}
	if t := os.Getenv("GITHUB_APM_PAT"); t != "" {
		cfg.Token = t
	} else if cfg.Token == "" {
		cfg.Token = os.Getenv("GITHUB_TOKEN")
	}
	if hosts := os.Getenv(branding.EnvVar("GIT_HOSTS")); hosts != "" {
		for _, h := range strings.Split(hosts, ",") {
			if h = strings.TrimSpace(h); h != "" {
				cfg.ExtraHosts = append(cfg.ExtraHosts, strings.ToLower(h))
			}
		}
	}

	return cfg
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(FilePath())
	v.SetConfigType(fileType)
	_ = v.ReadInConfig()
	v.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
