// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "imrouter.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if !cfg.Router.MultiUser {
		t.Error("expected multi_user=true by default")
	}
	if cfg.Metrics.ListenAddress != "" {
		t.Errorf("expected metrics disabled, got %q", cfg.Metrics.ListenAddress)
	}
	if !slices.Equal(cfg.Lifecycle.KnownUsers, []int32{0}) {
		t.Errorf("expected known_users=[0], got %v", cfg.Lifecycle.KnownUsers)
	}
}

func TestLoad_RequiresConfigEnv(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when IMROUTER_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "IMROUTER_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithConfigEnv(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging
router:
  multi_user: false
paths:
  root: /test/root
`)
	t.Setenv(EnvVar, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Router.MultiUser {
		t.Error("expected multi_user=false")
	}
	if cfg.Paths.ClientSocket != "/test/root/client.sock" {
		t.Errorf("expected client socket under root, got %s", cfg.Paths.ClientSocket)
	}
	if cfg.Paths.HostSocket != "/test/root/host.sock" {
		t.Errorf("expected host socket under root, got %s", cfg.Paths.HostSocket)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging

paths:
  client_socket: /custom/im.sock
  host_socket: /custom/host.sock
  catalog: /custom/catalog.jsonc

metrics:
  listen_address: 127.0.0.1:9464

lifecycle:
  known_users: [10, 11]
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if !cfg.Router.MultiUser {
		t.Error("expected multi_user to keep its default")
	}
	if cfg.Paths.ClientSocket != "/custom/im.sock" {
		t.Errorf("expected client_socket=/custom/im.sock, got %s", cfg.Paths.ClientSocket)
	}
	if cfg.Paths.HostSocket != "/custom/host.sock" {
		t.Errorf("expected host_socket=/custom/host.sock, got %s", cfg.Paths.HostSocket)
	}
	if cfg.Paths.Catalog != "/custom/catalog.jsonc" {
		t.Errorf("expected catalog=/custom/catalog.jsonc, got %s", cfg.Paths.Catalog)
	}
	if cfg.Metrics.ListenAddress != "127.0.0.1:9464" {
		t.Errorf("expected listen_address=127.0.0.1:9464, got %s", cfg.Metrics.ListenAddress)
	}
	if !slices.Equal(cfg.Lifecycle.KnownUsers, []int32{10, 11}) {
		t.Errorf("expected known_users to replace the default, got %v", cfg.Lifecycle.KnownUsers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("missing file: expected not-exist error, got %v", err)
	}
	if _, err := LoadFile(writeConfig(t, "router: [not, a, map]")); err == nil {
		t.Error("malformed file: expected error, got nil")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
environment: production

router:
  multi_user: true

paths:
  root: /default/root

production:
  router:
    multi_user: false
  paths:
    root: /prod/root
    catalog: /prod/catalog.jsonc
  metrics:
    listen_address: :9464

staging:
  paths:
    root: /staging/root
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Router.MultiUser {
		t.Error("expected multi_user=false from production override")
	}
	if cfg.Paths.Root != "/prod/root" {
		t.Errorf("expected root=/prod/root, got %s", cfg.Paths.Root)
	}
	if cfg.Paths.HostSocket != "/prod/root/host.sock" {
		t.Errorf("expected host socket under the overridden root, got %s", cfg.Paths.HostSocket)
	}
	if cfg.Paths.Catalog != "/prod/catalog.jsonc" {
		t.Errorf("expected catalog=/prod/catalog.jsonc, got %s", cfg.Paths.Catalog)
	}
	if cfg.Metrics.ListenAddress != ":9464" {
		t.Errorf("expected listen_address=:9464, got %s", cfg.Metrics.ListenAddress)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	t.Setenv("IMROUTER_ROOT", "/env/root")
	t.Setenv("IMROUTER_ENVIRONMENT", "staging")

	cfg, err := LoadFile(writeConfig(t, `
environment: development
paths:
  root: /file/root
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s (env vars should not override)", cfg.Environment)
	}
	if cfg.Paths.ClientSocket != "/file/root/client.sock" {
		t.Errorf("expected client socket under /file/root, got %s (env vars should not override)", cfg.Paths.ClientSocket)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/imrouter",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/imrouter",
		},
		{
			input:    "${IMROUTER_TEST_MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "invalid" },
			wantErr: "invalid environment",
		},
		{
			name:    "empty client socket",
			modify:  func(c *Config) { c.Paths.ClientSocket = "" },
			wantErr: "paths.client_socket is required",
		},
		{
			name:    "empty host socket",
			modify:  func(c *Config) { c.Paths.HostSocket = "" },
			wantErr: "paths.host_socket is required",
		},
		{
			name: "shared socket",
			modify: func(c *Config) {
				c.Paths.ClientSocket = "/run/imrouter/im.sock"
				c.Paths.HostSocket = "/run/imrouter/./im.sock"
			},
			wantErr: "must differ",
		},
		{
			name:    "empty catalog",
			modify:  func(c *Config) { c.Paths.Catalog = "" },
			wantErr: "paths.catalog is required",
		},
		{
			name:    "bad metrics address",
			modify:  func(c *Config) { c.Metrics.ListenAddress = "9464" },
			wantErr: "metrics.listen_address",
		},
		{
			name:    "negative user",
			modify:  func(c *Config) { c.Lifecycle.KnownUsers = []int32{0, -1} },
			wantErr: "invalid user -1",
		},
		{
			name:    "duplicate user",
			modify:  func(c *Config) { c.Lifecycle.KnownUsers = []int32{10, 10} },
			wantErr: "duplicate user 10",
		},
		{
			name:   "no known users",
			modify: func(c *Config) { c.Lifecycle.KnownUsers = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate() = %v, want nil", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Paths.ClientSocket = filepath.Join(tmpDir, "public", "client.sock")
	cfg.Paths.HostSocket = filepath.Join(tmpDir, "private", "host.sock")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	for _, path := range []string{filepath.Join(tmpDir, "public"), filepath.Join(tmpDir, "private")} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}

func TestShippedConfig(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "deploy", "imrouter.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Environment != Production || !cfg.Router.MultiUser {
		t.Errorf("environment=%s multi_user=%v", cfg.Environment, cfg.Router.MultiUser)
	}
	if cfg.Paths.ClientSocket != "/run/imrouter/client.sock" {
		t.Errorf("client_socket = %s", cfg.Paths.ClientSocket)
	}
	if cfg.Metrics.ListenAddress != "127.0.0.1:9464" {
		t.Errorf("listen_address = %s, development override must not apply in production", cfg.Metrics.ListenAddress)
	}
}
