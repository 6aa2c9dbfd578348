package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

const (
	DefaultAgentAddress           = "127.0.0.1:8080"
	DefaultAgentTimeoutSeconds    = 5
	DefaultRefreshIntervalSeconds = 30
	DefaultLogLevel               = "info"
)

// Config captures persisted user preferences and the agent to talk to.
type Config struct {
	Theme                  string `yaml:"theme"`
	Agent                  Agent  `yaml:"agent"`
	RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"`
	LogFile                string `yaml:"log_file"`
	LogLevel               string `yaml:"log_level"`
}

// Agent contains what is needed to reach the agent serving app state.
type Agent struct {
	Address        string `yaml:"address"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	TLS            TLS    `yaml:"tls"`
}

// TLS configures transport security for the agent connection.
type TLS struct {
	CAFile     string `yaml:"ca_file"`
	ServerName string `yaml:"server_name"`
	Insecure   bool   `yaml:"insecure"`
}

// Load reads configuration data from the provided path. If the file does not exist,
// a default configuration is returned without an error.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := ResolvePath(path)
	if err != nil {
		return cfg, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return Normalize(cfg), nil
}

// Save writes cfg to path, replacing the previous file atomically.
func Save(path string, cfg Config) error {
	resolved, err := ResolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(resolved), ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Default returns a usable configuration when no file exists yet.
func Default() Config {
	return Config{
		Theme: ThemeAuto,
		Agent: Agent{
			Address:        DefaultAgentAddress,
			TimeoutSeconds: DefaultAgentTimeoutSeconds,
		},
		RefreshIntervalSeconds: DefaultRefreshIntervalSeconds,
		LogLevel:               DefaultLogLevel,
	}
}

// Normalize fills zero values with defaults and canonicalizes enums.
func Normalize(cfg Config) Config {
	def := Default()
	cfg.Theme = NormalizeTheme(cfg.Theme)
	if strings.TrimSpace(cfg.Agent.Address) == "" {
		cfg.Agent.Address = def.Agent.Address
	}
	if cfg.Agent.TimeoutSeconds <= 0 {
		cfg.Agent.TimeoutSeconds = def.Agent.TimeoutSeconds
	}
	if cfg.RefreshIntervalSeconds < 0 {
		cfg.RefreshIntervalSeconds = 0
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	return cfg
}

// NormalizeTheme maps free-form input to a known theme, defaulting to auto.
func NormalizeTheme(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ThemeDark:
		return ThemeDark
	case ThemeLight:
		return ThemeLight
	default:
		return ThemeAuto
	}
}

// Validate checks that the agent can plausibly be reached with cfg.
func Validate(cfg Config) error {
	if err := validateAddress(cfg.Agent.Address); err != nil {
		return fmt.Errorf("agent address: %w", err)
	}
	if ca := cfg.Agent.TLS.CAFile; ca != "" {
		if _, err := os.Stat(ca); err != nil {
			return fmt.Errorf("agent tls ca_file: %w", err)
		}
	}
	return nil
}

// AgentTimeout returns the per-request agent timeout.
func (c Config) AgentTimeout() time.Duration {
	return time.Duration(c.Agent.TimeoutSeconds) * time.Second
}

// RefreshInterval returns how often the app is refetched; zero disables it.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// DefaultPath returns the standard configuration path within the user's
// XDG config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "kea-tui", "config.yaml"), nil
}

// DefaultLogPath returns where logs go when log_file is unset.
func DefaultLogPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("user cache dir: %w", err)
	}
	return filepath.Join(dir, "kea-tui", "kea-tui.log"), nil
}

// ResolvePath returns path or the default location when it is empty.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DefaultPath()
}

func validateAddress(addr string) error {
	value := strings.TrimSpace(addr)
	if value == "" {
		return errors.New("empty")
	}
	if strings.HasPrefix(value, "unix://") {
		if strings.TrimPrefix(value, "unix://") == "" {
			return errors.New("unix socket path cannot be empty")
		}
		return nil
	}
	_, port, err := net.SplitHostPort(value)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}
