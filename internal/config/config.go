// Package config handles loading and managing entdecode configuration.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DecodeConfig controls how input text is read and reported.
type DecodeConfig struct {
	Charset       string `toml:"charset"`         // Input charset, "auto" for detection
	Fallback      bool   `toml:"fallback"`        // Print raw input when nothing was decoded
	MaxInputBytes int64  `toml:"max_input_bytes"` // Per-input size limit
	Workers       int    `toml:"workers"`         // Files decoded in parallel
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	APIPort         int      `toml:"api_port"`
	BindAddr        string   `toml:"bind_addr"`
	APIKey          string   `toml:"api_key"`
	CORSOrigins     []string `toml:"cors_origins"`
	CORSCredentials bool     `toml:"cors_credentials"`
	CORSMaxAge      int      `toml:"cors_max_age"`
	RateLimitRPS    float64  `toml:"rate_limit_rps"`
	RateLimitBurst  int      `toml:"rate_limit_burst"`
}

// Config represents the entdecode configuration.
type Config struct {
	Decode DecodeConfig `toml:"decode"`
	Server ServerConfig `toml:"server"`

	// Computed (not from config file)
	HomeDir    string `toml:"-"`
	configPath string
}

// DefaultHome returns the default entdecode home directory.
// Respects the ENTDECODE_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("ENTDECODE_HOME"); h != "" {
		return expandPath(h)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".entdecode"
	}
	return filepath.Join(home, ".entdecode")
}

// Default returns a configuration with every default applied.
func Default(homeDir string) *Config {
	return &Config{
		HomeDir: homeDir,
		Decode: DecodeConfig{
			Charset:       "auto",
			Fallback:      true,
			MaxInputBytes: 10 << 20,
			Workers:       4,
		},
		Server: ServerConfig{
			APIPort:        8080,
			BindAddr:       "127.0.0.1",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
	}
}

// Load reads the configuration. path overrides the config file location and
// homeDir overrides the home directory; either may be empty. A missing
// default config file yields the defaults; a missing explicit one is an error.
func Load(path, homeDir string) (*Config, error) {
	if homeDir == "" {
		homeDir = DefaultHome()
	} else {
		homeDir = expandPath(homeDir)
	}
	explicit := path != ""
	if !explicit {
		path = filepath.Join(homeDir, "config.toml")
	}
	path = expandPath(path)

	cfg := Default(homeDir)
	cfg.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigFilePath returns the path the configuration was (or would be) read from.
func (c *Config) ConfigFilePath() string {
	if c.configPath != "" {
		return c.configPath
	}
	return filepath.Join(c.HomeDir, "config.toml")
}

func (c *Config) validate() error {
	if c.Decode.MaxInputBytes <= 0 {
		return fmt.Errorf("decode.max_input_bytes must be positive, got %d", c.Decode.MaxInputBytes)
	}
	if c.Decode.Workers <= 0 {
		return fmt.Errorf("decode.workers must be positive, got %d", c.Decode.Workers)
	}
	if c.Server.APIPort <= 0 || c.Server.APIPort > 65535 {
		return fmt.Errorf("server.api_port out of range: %d", c.Server.APIPort)
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("server rate limit must be positive (rps=%v, burst=%d)", c.Server.RateLimitRPS, c.Server.RateLimitBurst)
	}
	return nil
}

// ValidateSecure refuses to expose the API beyond loopback without an API key.
func (s ServerConfig) ValidateSecure() error {
	if s.APIKey != "" || IsLoopback(s.BindAddr) {
		return nil
	}
	return fmt.Errorf("refusing to bind API server to %q without authentication: set [server] api_key or bind to 127.0.0.1", s.BindAddr)
}

// IsLoopback reports whether addr is empty, "localhost" or a loopback IP.
func IsLoopback(addr string) bool {
	if addr == "" || strings.EqualFold(addr, "localhost") {
		return true
	}
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}

// expandPath expands a leading "~" or "~/" to the user's home directory.
// "~user" forms are left alone.
func expandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
