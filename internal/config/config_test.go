// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearrecordproj/clearrecord/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clearrecord.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	d, err := cfg.ReadHeaderTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = "127.0.0.1:9000"
read_header_timeout = "3s"

[rules]
dir = "/etc/clearrecord/rules"

[log]
level = "debug"

[mcp]
http_addr = ":9100"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "/etc/clearrecord/rules", cfg.Rules.Dir)
	assert.Equal(t, "dc", cfg.Rules.DefaultJurisdiction, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.MCP.HTTPAddr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":9000\"\n")
	t.Setenv(config.EnvAddr, ":7000")
	t.Setenv(config.EnvRulesDir, "/tmp/rules")
	t.Setenv(config.EnvLogLevel, "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/rules", cfg.Rules.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown key", content: "[server]\nport = 8080\n", wantErr: "port"},
		{name: "bad duration", content: "[server]\nread_header_timeout = \"soon\"\n", wantErr: "server.read_header_timeout"},
		{name: "bad log level", content: "[log]\nlevel = \"loud\"\n", wantErr: "log.level"},
		{name: "empty default jurisdiction", content: "[rules]\ndefault_jurisdiction = \"\"\n", wantErr: "rules.default_jurisdiction"},
		{name: "not toml", content: "[server\n", wantErr: "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
