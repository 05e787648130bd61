// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
	// configFormatTOML represents TOML configuration format (.toml)
	configFormatTOML
)

// Server modes.
const (
	// ModeGateway serves the [Gateway] on the public endpoint, so one
	// delivery is promoted in-process when the cheap entry asks for it.
	ModeGateway = "gateway"
	// ModeSplit serves the cheap entry at the root and the authoritative
	// entry under the update prefix, leaving promotion to an external router.
	ModeSplit = "split"
)

// Environment variables consulted by [LoadConfig].
const (
	EnvConfigFile = "MCP_GATEWAY_CONFIG_FILE"
	EnvAddr       = "MCP_GATEWAY_ADDR"
)

// Default values applied by [LoadConfig] and [DefaultConfig].
const (
	DefaultAddr            = ":8080"
	DefaultEndpoint        = "/mcp"
	DefaultUpdatePrefix    = "/_update"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultReadTimeout     = 30
	DefaultShutdownTimeout = 10

	DefaultProtocolVersion = "2025-03-26"
	DefaultServerName      = "mcp-upgrade-gateway"
	DefaultInstructions    = "Welcome to the minimal MCP server!"
)

// Config represents the server configuration structure.
//
// The configuration can be loaded from a JSON, YAML or TOML file specified by
// the MCP_GATEWAY_CONFIG_FILE environment variable, with defaults applied for
// any missing values.
// Supported file extensions: .json, .yaml, .yml, .toml
type Config struct {
	// Server: Listener and HTTP binding settings
	Server struct {
		// Addr: Listen address
		Addr string `json:"addr" yaml:"addr" toml:"addr"`
		// Endpoint: The single JSON-RPC endpoint path
		Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
		// UpdatePrefix: Mount point of the authoritative entry in split mode
		UpdatePrefix string `json:"updatePrefix" yaml:"updatePrefix" toml:"updatePrefix"`
		// Mode: "gateway" or "split"
		Mode string `json:"mode" yaml:"mode" toml:"mode"`
		// MaxBodyBytes: Largest accepted request body
		MaxBodyBytes int64 `json:"maxBodyBytes" yaml:"maxBodyBytes" toml:"maxBodyBytes"`
		// ReadTimeout: Request read timeout in seconds
		ReadTimeout int `json:"readTimeoutSeconds" yaml:"readTimeoutSeconds" toml:"readTimeoutSeconds"`
		// ShutdownTimeout: Graceful shutdown budget in seconds
		ShutdownTimeout int `json:"shutdownTimeoutSeconds" yaml:"shutdownTimeoutSeconds" toml:"shutdownTimeoutSeconds"`
	} `json:"server" yaml:"server" toml:"server"`

	// Protocol: Identity advertised by initialize
	Protocol struct {
		Version      string `json:"version" yaml:"version" toml:"version"`
		ServerName   string `json:"serverName" yaml:"serverName" toml:"serverName"`
		Instructions string `json:"instructions" yaml:"instructions" toml:"instructions"`
	} `json:"protocol" yaml:"protocol" toml:"protocol"`

	// Logging: Log output settings
	Logging struct {
		// Format: "json" or "text"
		Format string `json:"format" yaml:"format" toml:"format"`
		// Silent: Discard all log output
		Silent bool `json:"silent" yaml:"silent" toml:"silent"`
	} `json:"logging" yaml:"logging" toml:"logging"`
}

// DefaultConfig returns a configuration populated with defaults only.
func DefaultConfig() *Config {
	config := &Config{}
	config.Server.Addr = DefaultAddr
	config.Server.Endpoint = DefaultEndpoint
	config.Server.UpdatePrefix = DefaultUpdatePrefix
	config.Server.Mode = ModeGateway
	config.Server.MaxBodyBytes = DefaultMaxBodyBytes
	config.Server.ReadTimeout = DefaultReadTimeout
	config.Server.ShutdownTimeout = DefaultShutdownTimeout
	config.Protocol.Version = DefaultProtocolVersion
	config.Protocol.ServerName = DefaultServerName
	config.Protocol.Instructions = DefaultInstructions
	config.Logging.Format = "json"
	return config
}

// ReadTimeoutDuration returns the read timeout as a [time.Duration].
func (c *Config) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

// ShutdownTimeoutDuration returns the shutdown budget as a [time.Duration].
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

// detectConfigFormat determines the configuration file format based on file extension.
// Extension matching is case-insensitive; anything unrecognized is read as JSON.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	case ".toml":
		return configFormatTOML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	case configFormatTOML:
		if _, err := toml.Decode(string(data), config); err != nil {
			return fmt.Errorf("failed to parse TOML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// LoadConfig loads server configuration from a file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml, .toml
//
// Returns:
//   - A pointer to the loaded Config struct with defaults applied
//   - An error if the configuration file cannot be read or parsed
//
// Configuration Priority:
//  1. Default values are set
//  2. MCP_GATEWAY_CONFIG_FILE environment variable is checked if configPath is empty
//  3. Config file values override defaults (if file exists and is valid)
//  4. MCP_GATEWAY_ADDR overrides the listen address
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
			return nil, err
		}
	}

	if addr := os.Getenv(EnvAddr); addr != "" {
		config.Server.Addr = addr
	}

	config.normalize()
	return config, nil
}

// normalize replaces invalid values with their defaults.
func (c *Config) normalize() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Endpoint == "" || !strings.HasPrefix(c.Server.Endpoint, "/") {
		c.Server.Endpoint = DefaultEndpoint
	}
	if c.Server.UpdatePrefix == "" || !strings.HasPrefix(c.Server.UpdatePrefix, "/") {
		c.Server.UpdatePrefix = DefaultUpdatePrefix
	}
	c.Server.UpdatePrefix = strings.TrimRight(c.Server.UpdatePrefix, "/")
	if c.Server.UpdatePrefix == "" {
		c.Server.UpdatePrefix = DefaultUpdatePrefix
	}
	if c.Server.Mode != ModeSplit {
		c.Server.Mode = ModeGateway
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Protocol.Version == "" {
		c.Protocol.Version = DefaultProtocolVersion
	}
	if c.Protocol.ServerName == "" {
		c.Protocol.ServerName = DefaultServerName
	}
	if c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
}
