package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/lexfrei/go-cpapi"
	"github.com/lexfrei/go-cpapi/observability"
)

// DefaultConfigFile is the default name of the config file.
const DefaultConfigFile = "config.yaml"

// Environment variables read after the config file.
const (
	EnvServer   = "CPCTL_SERVER"
	EnvUser     = "CPCTL_USER"
	EnvPassword = "CPCTL_PASSWORD"
)

// Config is the cpctl configuration. Files ending in .toml are read as TOML,
// anything else as YAML; both use the same keys.
type Config struct {
	Server             string        `yaml:"server" toml:"server"`
	User               string        `yaml:"user" toml:"user"`
	Password           string        `yaml:"password" toml:"password"`
	ReadOnly           bool          `yaml:"read_only" toml:"read_only"`
	SessionHeader      string        `yaml:"session_header" toml:"session_header"`
	SessionTimeout     time.Duration `yaml:"session_timeout" toml:"session_timeout"`
	SessionDescription string        `yaml:"session_description" toml:"session_description"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" toml:"insecure_skip_verify"`
	PollInterval       time.Duration `yaml:"poll_interval" toml:"poll_interval"`
	MaxWait            time.Duration `yaml:"max_wait" toml:"max_wait"`
}

// DefaultConfig returns the settings used for keys a config file leaves out.
func DefaultConfig() Config {
	return Config{
		SessionHeader:      cpapi.CheckPointSessionHeader,
		SessionTimeout:     cpapi.DefaultSessionTimeout,
		InsecureSkipVerify: true,
		PollInterval:       cpapi.DefaultPollInterval,
		MaxWait:            cpapi.DefaultMaxWait,
	}
}

// DefaultConfigPath returns the default path for the config file
// (e.g. ~/.config/cpctl/config.yaml on Linux).
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}

	return filepath.Join(configDir, "cpctl", DefaultConfigFile), nil
}

// LoadConfig reads file on top of DefaultConfig. When optional is set a
// missing file yields the defaults instead of an error.
func LoadConfig(file string, optional bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(file)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, errors.Wrap(err, "unable to read config file")
	}

	if strings.EqualFold(filepath.Ext(file), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "unable to parse config file %s", file)
		}
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "unable to parse config file %s", file)
	}

	return cfg, nil
}

// ApplyEnv overrides credentials with the CPCTL_* variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvServer); ok && v != "" {
		c.Server = v
	}
	if v, ok := lookup(EnvUser); ok && v != "" {
		c.User = v
	}
	if v, ok := lookup(EnvPassword); ok && v != "" {
		c.Password = v
	}
}

// ClientConfig converts the configuration into client settings.
func (c *Config) ClientConfig(logger observability.Logger) *cpapi.ClientConfig {
	return &cpapi.ClientConfig{
		Server:             c.Server,
		User:               c.User,
		Password:           c.Password,
		ReadOnly:           c.ReadOnly,
		SessionHeader:      c.SessionHeader,
		SessionTimeout:     c.SessionTimeout,
		SessionDescription: c.SessionDescription,
		InsecureSkipVerify: c.InsecureSkipVerify,
		Logger:             logger,
	}
}

// WaitOptions returns task polling settings.
func (c *Config) WaitOptions() *cpapi.WaitOptions {
	return &cpapi.WaitOptions{
		PollInterval: c.PollInterval,
		MaxWait:      c.MaxWait,
	}
}
