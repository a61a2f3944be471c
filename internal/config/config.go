package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nchapman/onboard/internal/fileutil"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Ollama  Ollama  `yaml:"ollama"`
	Install Install `yaml:"install"`
}

// Ollama configures how the local daemon is reached.
type Ollama struct {
	Host               string `yaml:"host"`
	IdleTimeoutSecs    int    `yaml:"idle_timeout_secs"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// Install configures the command line install step of onboarding.
type Install struct {
	Source    string `yaml:"source"`
	TargetDir string `yaml:"target_dir"`
	Name      string `yaml:"name"`
}

const (
	configDir  = ".onboard"
	configFile = "config.yaml"
	stateFile  = "state.json"
	lockFile   = "state.lock"
	logsDir    = "logs"

	DefaultHost = "http://localhost:11434"
	defaultPort = "11434"

	DefaultIdleTimeout = 120 * time.Second
)

func GetHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func ConfigPath() string {
	return filepath.Join(GetHomeDir(), configDir, configFile)
}

func StatePath() string {
	return filepath.Join(GetHomeDir(), configDir, stateFile)
}

func LockPath() string {
	return filepath.Join(GetHomeDir(), configDir, lockFile)
}

func LogsPath() string {
	return filepath.Join(GetHomeDir(), configDir, logsDir)
}

func DefaultConfig() *Config {
	return &Config{
		Ollama: Ollama{
			Host:               DefaultHost,
			IdleTimeoutSecs:    int(DefaultIdleTimeout / time.Second),
			RequestTimeoutSecs: 30,
		},
		Install: Install{
			Source:    "",
			TargetDir: filepath.Join(GetHomeDir(), ".local", "bin"),
			Name:      "ollama",
		},
	}
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fileutil.AtomicWriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(ConfigPath()),
		LogsPath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// OllamaHost returns the daemon base URL. OLLAMA_HOST takes precedence over
// the config file and accepts the same short forms the daemon does
// ("0.0.0.0", ":11434", "host:port").
func (c *Config) OllamaHost() string {
	if env := strings.TrimSpace(os.Getenv("OLLAMA_HOST")); env != "" {
		return NormalizeHost(env)
	}
	if c.Ollama.Host == "" {
		return DefaultHost
	}
	return NormalizeHost(c.Ollama.Host)
}

// IdleTimeout is how long a pull stream may stay silent before it is
// abandoned. Zero disables the check.
func (c *Config) IdleTimeout() time.Duration {
	if c.Ollama.IdleTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.Ollama.IdleTimeoutSecs) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	if c.Ollama.RequestTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Ollama.RequestTimeoutSecs) * time.Second
}

// NormalizeHost turns a host value into a base URL with scheme and port and
// no trailing slash.
func NormalizeHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultHost
	}

	scheme := "http"
	if i := strings.Index(raw, "://"); i >= 0 {
		scheme = raw[:i]
		raw = raw[i+3:]
	}

	hostport, path, _ := strings.Cut(raw, "/")

	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = strings.Trim(hostport, "[]"), ""
	}
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		if scheme == "https" {
			port = "443"
		} else {
			port = defaultPort
		}
	}

	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
	}
	if path = strings.TrimSuffix(path, "/"); path != "" {
		u.Path = "/" + path
	}
	return u.String()
}
