package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v4"
)

// Placeholder values shipped in a freshly generated config file. A
// config still carrying any of them is rejected by validation.
const (
	PlaceholderAccount  = "YOUR_EMAIL@gmail.com"
	PlaceholderPassword = "YOUR_APP_PASSWORD"
	PlaceholderKeyword  = "your_specific_keyword"
)

// Config describes one monitored mailbox and how to poll it.
type Config struct {
	Server              string `yaml:"server"`
	Port                int    `yaml:"port"`
	Protocol            string `yaml:"protocol"` // "imap" or "pop3"
	Account             string `yaml:"account"`
	Password            string `yaml:"password"`
	Keyword             string `yaml:"keyword"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	Mailbox             string `yaml:"mailbox"`
	LogLevel            string `yaml:"log_level"`
}

// Default returns a starter configuration with placeholder credentials.
// It does not pass validation until the placeholders are replaced.
func Default() *Config {
	return &Config{
		Server:              "imap.gmail.com",
		Port:                993,
		Protocol:            "imap",
		Account:             PlaceholderAccount,
		Password:            PlaceholderPassword,
		Keyword:             PlaceholderKeyword,
		PollIntervalSeconds: 30,
		Mailbox:             "INBOX",
		LogLevel:            "info",
	}
}

// PollInterval returns the poll interval as a time.Duration.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file. Unlike Load it does not
// validate, so a settings dialog may persist a half-filled config.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Protocol == "" {
		c.Protocol = "imap"
	}
	if c.Server == "" {
		c.Server = "imap.gmail.com"
	}
	if c.Port == 0 {
		if c.Protocol == "pop3" {
			c.Port = 995
		} else {
			c.Port = 993
		}
	}
	if c.Mailbox == "" {
		c.Mailbox = "INBOX"
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports the first problem that must be fixed before a
// monitoring run may start.
func (c *Config) Validate() error {
	if c.Protocol != "imap" && c.Protocol != "pop3" {
		return fmt.Errorf("protocol must be imap or pop3")
	}
	if c.Server == "" {
		return fmt.Errorf("server is required")
	}
	if c.Account == "" || c.Account == PlaceholderAccount {
		return fmt.Errorf("account is required")
	}
	if c.Password == "" || c.Password == PlaceholderPassword {
		return fmt.Errorf("password is required")
	}
	if c.Keyword == "" || c.Keyword == PlaceholderKeyword {
		return fmt.Errorf("keyword is required")
	}
	if c.PollIntervalSeconds < 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	return nil
}
