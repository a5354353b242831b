package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	APIURL string `yaml:"api_url"`
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"` // optional; first listed repo when empty

	PollInterval      time.Duration `yaml:"-"`
	RawPollInterval   string        `yaml:"poll_interval"` // e.g. "5s", "2000ms", "2000"
	DetailInterval    time.Duration `yaml:"-"`
	RawDetailInterval string        `yaml:"detail_poll_interval"`
	RequestTimeout    time.Duration `yaml:"-"`
	RawRequestTimeout string        `yaml:"request_timeout"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		APIURL:            "http://localhost:8000",
		RawPollInterval:   "5s",
		RawDetailInterval: "5s",
		RawRequestTimeout: "10s",
		LogFile:           defaultLogFile(),
		LogLevel:          "info",
	}
}

// Load builds the configuration from defaults, the config file at path (or
// the default location when path is empty), a .env file in the working
// directory and CION_* environment variables, in that order of precedence.
// Flags are applied by the caller afterwards, followed by Finalize.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = ConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
			// no config file is fine
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv(os.Getenv)

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.APIURL, "CION_API_URL")
	set(&c.Owner, "CION_OWNER")
	set(&c.Repo, "CION_REPO")
	set(&c.RawPollInterval, "CION_POLL_INTERVAL")
	set(&c.RawDetailInterval, "CION_DETAIL_POLL_INTERVAL")
	set(&c.LogFile, "CION_LOG_FILE")
	set(&c.LogLevel, "CION_LOG_LEVEL")
	if getenv("DEBUG") != "" {
		c.LogLevel = "debug"
	}
}

// Finalize parses the raw durations and validates the result. It must be
// called once all sources have been applied.
func (c *Config) Finalize() error {
	var err error
	if c.PollInterval, err = parseInterval("poll_interval", c.RawPollInterval); err != nil {
		return err
	}
	if c.DetailInterval, err = parseInterval("detail_poll_interval", c.RawDetailInterval); err != nil {
		return err
	}
	if c.RequestTimeout, err = parseInterval("request_timeout", c.RawRequestTimeout); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks the parsed configuration.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return errors.New("no owner configured: pass owner[/repo], --owner or set CION_OWNER")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_url %q", c.APIURL)
	}
	if c.PollInterval <= 0 || c.DetailInterval <= 0 {
		return errors.New("poll intervals must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// SetTarget applies an "owner" or "owner/repo" argument. A bare owner
// clears the repository so the first one listed is shown.
func (c *Config) SetTarget(target string) {
	c.Owner, c.Repo, _ = strings.Cut(strings.Trim(target, "/"), "/")
}

// DetectTarget returns "owner/repo" for the GitHub origin remote of the
// current git checkout, or "" when there is none.
func DetectTarget() string {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return ""
	}
	return parseGitRemote(strings.TrimSpace(string(out)))
}

// parseGitRemote extracts owner/repo from a git remote URL
func parseGitRemote(remote string) string {
	// SSH: git@github.com:owner/repo.git
	if strings.HasPrefix(remote, "git@github.com:") {
		remote = strings.TrimPrefix(remote, "git@github.com:")
		return strings.TrimSuffix(remote, ".git")
	}

	// HTTPS: https://github.com/owner/repo.git
	if _, rest, ok := strings.Cut(remote, "github.com/"); ok {
		return strings.TrimSuffix(rest, ".git")
	}

	return ""
}

// parseInterval accepts Go durations ("5s") and bare integers, which are
// taken as milliseconds.
func parseInterval(name, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is empty", name)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		ms, convErr := strconv.ParseInt(raw, 10, 64)
		if convErr != nil {
			return 0, fmt.Errorf("parse %s %q: %w", name, raw, err)
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return d, nil
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cion", "config.yml")
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cion.log")
	}
	return filepath.Join(home, ".config", "cion", "cion.log")
}
