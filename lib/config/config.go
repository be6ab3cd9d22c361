// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable [Load] reads the config path
// from.
const EnvVar = "IMROUTER_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the daemon configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Router selects the routing mode.
	Router RouterConfig `yaml:"router"`

	// Paths configures socket and catalog locations.
	Paths PathsConfig `yaml:"paths"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Lifecycle configures boot-time user discovery.
	Lifecycle LifecycleConfig `yaml:"lifecycle"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Router  *RouterConfig  `yaml:"router,omitempty"`
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// RouterConfig selects how client calls reach an input method
// instance.
type RouterConfig struct {
	// MultiUser enables one isolated instance per user. When false a
	// single legacy instance serves every user.
	// Default: true
	MultiUser bool `yaml:"multi_user"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// Root is the runtime directory holding the sockets.
	// Default: /run/imrouter
	Root string `yaml:"root"`

	// ClientSocket is the world-connectable socket serving input
	// method client operations.
	// Default: ${IMROUTER_ROOT}/client.sock
	ClientSocket string `yaml:"client_socket"`

	// HostSocket is the owner-only socket serving lifecycle
	// notifications and local control-plane operations.
	// Default: ${IMROUTER_ROOT}/host.sock
	HostSocket string `yaml:"host_socket"`

	// Catalog is the JSONC file listing installed input methods.
	// Default: /etc/imrouter/catalog.jsonc
	Catalog string `yaml:"catalog"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// ListenAddress is the host:port serving /metrics. Empty disables
	// the endpoint.
	ListenAddress string `yaml:"listen_address"`
}

// LifecycleConfig configures user discovery at boot.
type LifecycleConfig struct {
	// KnownUsers are the users with instances created when the host
	// reports the activity-manager-ready boot phase, for hosts that do
	// not deliver a user-starting notification for every running user.
	// Default: [0]
	KnownUsers []int32 `yaml:"known_users"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	return &Config{
		Environment: Development,
		Router: RouterConfig{
			MultiUser: true,
		},
		Paths: PathsConfig{
			Root:         "/run/imrouter",
			ClientSocket: "${IMROUTER_ROOT}/client.sock",
			HostSocket:   "${IMROUTER_ROOT}/host.sock",
			Catalog:      "/etc/imrouter/catalog.jsonc",
		},
		Lifecycle: LifecycleConfig{
			KnownUsers: []int32{0},
		},
	}
}

// Load loads configuration from the IMROUTER_CONFIG environment
// variable. There is no fallback: if the variable is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your imrouter.yaml config file, or use --config flag", EnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values. The only expansion performed is ${HOME},
// ${IMROUTER_ROOT} and ${VAR:-default} in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// A file that lists known_users replaces the default list rather
	// than appending to it.
	c.Lifecycle.KnownUsers = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if c.Lifecycle.KnownUsers == nil {
		c.Lifecycle.KnownUsers = Default().Lifecycle.KnownUsers
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Router != nil {
		// MultiUser is a bool, so an overriding router section always
		// sets it.
		c.Router.MultiUser = overrides.Router.MultiUser
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.ClientSocket != "" {
			c.Paths.ClientSocket = overrides.Paths.ClientSocket
		}
		if overrides.Paths.HostSocket != "" {
			c.Paths.HostSocket = overrides.Paths.HostSocket
		}
		if overrides.Paths.Catalog != "" {
			c.Paths.Catalog = overrides.Paths.Catalog
		}
	}

	if overrides.Metrics != nil && overrides.Metrics.ListenAddress != "" {
		c.Metrics.ListenAddress = overrides.Metrics.ListenAddress
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"IMROUTER_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["IMROUTER_ROOT"] = c.Paths.Root

	c.Paths.ClientSocket = expandVars(c.Paths.ClientSocket, vars)
	c.Paths.HostSocket = expandVars(c.Paths.HostSocket, vars)
	c.Paths.Catalog = expandVars(c.Paths.Catalog, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. vars take
// precedence over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.ClientSocket == "" {
		errs = append(errs, errors.New("paths.client_socket is required"))
	}
	if c.Paths.HostSocket == "" {
		errs = append(errs, errors.New("paths.host_socket is required"))
	}
	if c.Paths.ClientSocket != "" && filepath.Clean(c.Paths.ClientSocket) == filepath.Clean(c.Paths.HostSocket) {
		errs = append(errs, errors.New("paths.client_socket and paths.host_socket must differ"))
	}
	if c.Paths.Catalog == "" {
		errs = append(errs, errors.New("paths.catalog is required"))
	}

	if c.Metrics.ListenAddress != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.ListenAddress); err != nil {
			errs = append(errs, fmt.Errorf("metrics.listen_address: %w", err))
		}
	}

	seen := make(map[int32]bool, len(c.Lifecycle.KnownUsers))
	for _, user := range c.Lifecycle.KnownUsers {
		if user < 0 {
			errs = append(errs, fmt.Errorf("lifecycle.known_users: invalid user %d", user))
		}
		if seen[user] {
			errs = append(errs, fmt.Errorf("lifecycle.known_users: duplicate user %d", user))
		}
		seen[user] = true
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the directories holding the configured sockets.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.ClientSocket, c.Paths.HostSocket} {
		if path == "" {
			continue
		}
		directory := filepath.Dir(path)
		if err := os.MkdirAll(directory, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", directory, err)
		}
	}
	return nil
}
