// SPDX-License-Identifier: Apache-2.0

// Package config loads clearrecord settings from an optional TOML file and
// CLEARRECORD_* environment variables. Defaults work without either.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/clearrecordproj/clearrecord/internal/logging"
)

type Server struct {
	Addr string `toml:"addr"`
	// ReadHeaderTimeout is a Go duration string such as "10s".
	ReadHeaderTimeout string `toml:"read_header_timeout"`
}

type Rules struct {
	// Dir holds extra rule tables loaded next to the embedded ones.
	Dir                 string `toml:"dir"`
	DefaultJurisdiction string `toml:"default_jurisdiction"`
}

type Log struct {
	Level string `toml:"level"`
}

type MCP struct {
	// HTTPAddr enables the streamable HTTP transport when set.
	HTTPAddr string `toml:"http_addr"`
}

type Config struct {
	Server Server `toml:"server"`
	Rules  Rules  `toml:"rules"`
	Log    Log    `toml:"log"`
	MCP    MCP    `toml:"mcp"`
}

func Default() Config {
	return Config{
		Server: Server{Addr: ":8080", ReadHeaderTimeout: "10s"},
		Rules:  Rules{DefaultJurisdiction: "dc"},
		Log:    Log{Level: "info"},
	}
}

// Environment variables that override the file.
const (
	EnvAddr     = "CLEARRECORD_ADDR"
	EnvRulesDir = "CLEARRECORD_RULES_DIR"
	EnvLogLevel = "CLEARRECORD_LOG_LEVEL"
)

// Load reads path on top of the defaults and applies the environment. An
// empty path skips the file; a named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.New(strict.String())
		}
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvRulesDir); ok {
		c.Rules.Dir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if _, err := c.ReadHeaderTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Rules.DefaultJurisdiction == "" {
		errs = append(errs, errors.New("rules.default_jurisdiction must not be empty"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

func (c Config) ReadHeaderTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.ReadHeaderTimeout)
	if err != nil {
		return 0, fmt.Errorf("server.read_header_timeout: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("server.read_header_timeout must be positive")
	}
	return d, nil
}
