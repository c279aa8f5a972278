package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the configuration is complete and consistent.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" ||
		(parsed.Scheme != "https" && parsed.Scheme != "http") {
		return fmt.Errorf("base_url %q is not a valid http(s) URL", c.BaseURL)
	}
	if c.Denom == "" {
		return fmt.Errorf("denom cannot be empty")
	}
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_secs must be positive, got %d", c.IntervalSeconds)
	}
	if c.CooldownSeconds <= 0 {
		return fmt.Errorf("cooldown_secs must be positive, got %d", c.CooldownSeconds)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_secs must be positive, got %d", c.RequestTimeoutSeconds)
	}

	if c.Ops.Enabled {
		if c.Ops.Host == "" {
			return fmt.Errorf("ops host cannot be empty")
		}
		if c.Ops.Port <= 0 || c.Ops.Port > 65535 {
			return fmt.Errorf("ops port must be between 1 and 65535, got %d", c.Ops.Port)
		}
	}

	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account must be configured")
	}
	seen := make(map[string]bool, len(c.Accounts))
	for i, account := range c.Accounts {
		if err := account.Validate(); err != nil {
			return fmt.Errorf("account %d: %w", i+1, err)
		}
		if seen[account.Name] {
			return fmt.Errorf("account name %q is configured twice", account.Name)
		}
		seen[account.Name] = true
	}

	return nil
}

// Validate ensures an account has all three required fields.
func (a *Account) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if a.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if a.Valoper == "" {
		return fmt.Errorf("valoper cannot be empty")
	}
	return nil
}
