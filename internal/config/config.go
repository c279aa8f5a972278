package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/layerwatch/internal/layer"
)

// Defaults applied to any field left unset.
const (
	DefaultOutputDir             = "."
	DefaultIntervalSeconds       = 300
	DefaultCooldownSeconds       = 60
	DefaultRequestTimeoutSeconds = 10
	DefaultOpsHost               = "127.0.0.1"
	DefaultOpsPort               = 8090
)

// Config is the complete layerwatch configuration.
type Config struct {
	BaseURL               string    `yaml:"base_url"`             // Layer REST endpoint
	Denom                 string    `yaml:"denom"`                // Staking denom for balance queries
	OutputDir             string    `yaml:"output_dir"`           // Directory for per-account CSV logs
	IntervalSeconds       int       `yaml:"interval_secs"`        // Seconds between successful cycles
	CooldownSeconds       int       `yaml:"cooldown_secs"`        // Seconds to wait after a failed cycle
	RequestTimeoutSeconds int       `yaml:"request_timeout_secs"` // Per-request HTTP timeout in seconds
	Ops                   OpsConfig `yaml:"ops"`
	Accounts              []Account `yaml:"accounts"`
}

// OpsConfig configures the operational HTTP endpoint.
type OpsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Account names one monitored account and its two on-chain addresses.
type Account struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"` // tellor1... account address
	Valoper string `yaml:"valoper"` // tellorvaloper1... validator operator address
}

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = layer.DefaultBaseURL
	}
	if c.Denom == "" {
		c.Denom = layer.DefaultDenom
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = DefaultIntervalSeconds
	}
	if c.CooldownSeconds == 0 {
		c.CooldownSeconds = DefaultCooldownSeconds
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if c.Ops.Host == "" {
		c.Ops.Host = DefaultOpsHost
	}
	if c.Ops.Port == 0 {
		c.Ops.Port = DefaultOpsPort
	}
}

// GetInterval returns the steady polling interval as a time.Duration.
func (c *Config) GetInterval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// GetCooldown returns the post-failure cooldown as a time.Duration.
func (c *Config) GetCooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// GetRequestTimeout returns the per-request HTTP timeout as a time.Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ListenAddr returns the ops server bind address.
func (o OpsConfig) ListenAddr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}
