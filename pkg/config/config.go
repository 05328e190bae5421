// Package config holds the settings of one onboard run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvPassword     = "ONBOARD_PASSWORD"
	EnvSeedFile     = "ONBOARD_SEED_FILE"
	EnvExtensionDir = "ONBOARD_EXTENSION_DIR"
)

// Defaults for the extension installed from the Chrome web store.
const (
	DefaultExtensionID      = "nkbihfbeogaeaoehlefnkodbefgpgknn"
	DefaultExtensionVersion = "12.9.3_1"
	DefaultWindowTitle      = "MetaMask"
	DefaultChannel          = "chrome"
	DefaultSeedFile         = "recovery_seed.txt"
)

// Config represents the configuration for one onboarding run
type Config struct {
	// Extension location and identity
	Extension ExtensionConfig `yaml:"extension" json:"extension"`

	// Browser launch settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// SeedFile is a text file holding the 12 recovery words
	SeedFile string `yaml:"seed_file" json:"seed_file"`

	// Password for the imported wallet. Prefer ONBOARD_PASSWORD over the file.
	Password string `yaml:"password" json:"-"`

	Timeouts  TimeoutConfig  `yaml:"timeouts" json:"timeouts"`
	Logging   LoggingConfig  `yaml:"logging" json:"logging"`
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// ConfigFilePath is the file the config was loaded from, if any
	ConfigFilePath string `yaml:"-" json:"-"`
}

// ExtensionConfig locates the unpacked extension
type ExtensionConfig struct {
	Dir         string `yaml:"dir" json:"dir"`
	ID          string `yaml:"id" json:"id"`
	Version     string `yaml:"version" json:"version"`
	WindowTitle string `yaml:"window_title" json:"window_title"`

	// WindowGlob, when set, matches the whole window title with a glob
	// pattern instead of the WindowTitle substring
	WindowGlob string `yaml:"window_glob" json:"window_glob"`
}

// BrowserConfig defines how the browser is launched
type BrowserConfig struct {
	Headless    bool          `yaml:"headless" json:"headless"`
	SlowMo      time.Duration `yaml:"slow_mo" json:"slow_mo"`
	Channel     string        `yaml:"channel" json:"channel"`
	UserDataDir string        `yaml:"user_data_dir" json:"user_data_dir"`

	// SkipInstall skips the playwright driver download
	SkipInstall bool `yaml:"skip_install" json:"skip_install"`
}

// TimeoutConfig bounds every wait of the flow
type TimeoutConfig struct {
	Window        time.Duration `yaml:"window" json:"window"`
	PollInterval  time.Duration `yaml:"poll_interval" json:"poll_interval"`
	PageLoad      time.Duration `yaml:"page_load" json:"page_load"`
	Element       time.Duration `yaml:"element" json:"element"`
	PresenceProbe time.Duration `yaml:"presence_probe" json:"presence_probe"`
	Settle        time.Duration `yaml:"settle" json:"settle"`

	// Run bounds the whole flow; 0 means unbounded
	Run time.Duration `yaml:"run" json:"run"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Dir        string `yaml:"dir" json:"dir"`
	File       string `yaml:"file" json:"file"`
	Console    bool   `yaml:"console" json:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// DefaultConfig returns a configuration matching a stock Chrome install
func DefaultConfig() *Config {
	return &Config{
		Extension: ExtensionConfig{
			Dir:         DefaultExtensionDir(),
			ID:          DefaultExtensionID,
			Version:     DefaultExtensionVersion,
			WindowTitle: DefaultWindowTitle,
		},
		Browser: BrowserConfig{
			Channel: DefaultChannel,
		},
		SeedFile: DefaultSeedFile,
		Timeouts: TimeoutConfig{
			Window:        30 * time.Second,
			PollInterval:  100 * time.Millisecond,
			PageLoad:      30 * time.Second,
			Element:       5 * time.Second,
			PresenceProbe: 5 * time.Second,
			Settle:        100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        ".",
			File:       "wallet_logs.log",
			MaxSizeMB:  1,
			MaxAgeDays: 10,
		},
		Artifacts: ArtifactConfig{
			OutputDir: filepath.Join(".onboard", "artifacts"),
		},
	}
}

// DefaultExtensionDir returns where Chrome unpacks the default extension
// release for the current user, or "" when the home directory is unknown.
func DefaultExtensionDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return ExtensionDir(home, DefaultExtensionID, DefaultExtensionVersion)
}

// ExtensionDir builds the Chrome profile path of extension id at version
// under home.
func ExtensionDir(home, id, version string) string {
	return filepath.Join(home, "AppData", "Local", "Google", "Chrome", "User Data", "Default",
		"Extensions", id, version)
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ConfigFilePath = path
	return cfg, nil
}

// ApplyEnv overrides file values with the ONBOARD_* environment variables
// that are set and non-empty.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvSeedFile); v != "" {
		c.SeedFile = v
	}
	if v := os.Getenv(EnvExtensionDir); v != "" {
		c.Extension.Dir = v
	}
}

// ResolvePaths expands a leading ~ in every path setting.
func (c *Config) ResolvePaths() error {
	paths := []struct {
		name string
		p    *string
	}{
		{"seed_file", &c.SeedFile},
		{"extension.dir", &c.Extension.Dir},
		{"browser.user_data_dir", &c.Browser.UserDataDir},
		{"logging.dir", &c.Logging.Dir},
		{"artifacts.output_dir", &c.Artifacts.OutputDir},
	}
	for _, path := range paths {
		expanded, err := homedir.Expand(*path.p)
		if err != nil {
			return fmt.Errorf("could not resolve %s %q: %w", path.name, *path.p, err)
		}
		*path.p = expanded
	}
	return nil
}

// WindowMatcher returns the compiled window glob, or nil when matching by
// substring.
func (c *Config) WindowMatcher() (glob.Glob, error) {
	if c.Extension.WindowGlob == "" {
		return nil, nil
	}
	return glob.Compile(c.Extension.WindowGlob)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Password == "" {
		return fmt.Errorf("password is required (set %s or password in the config file)", EnvPassword)
	}
	if c.SeedFile == "" {
		return fmt.Errorf("seed_file is required")
	}
	if c.Extension.Dir == "" {
		return fmt.Errorf("extension.dir is required")
	}
	if c.Extension.WindowTitle == "" && c.Extension.WindowGlob == "" {
		return fmt.Errorf("extension.window_title is required")
	}
	if c.Extension.WindowGlob != "" {
		if _, err := glob.Compile(c.Extension.WindowGlob); err != nil {
			return fmt.Errorf("invalid extension.window_glob %q: %w", c.Extension.WindowGlob, err)
		}
	}
	if c.Browser.SlowMo < 0 {
		return fmt.Errorf("browser.slow_mo cannot be negative")
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"window", c.Timeouts.Window},
		{"poll_interval", c.Timeouts.PollInterval},
		{"page_load", c.Timeouts.PageLoad},
		{"element", c.Timeouts.Element},
		{"presence_probe", c.Timeouts.PresenceProbe},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("timeouts.%s must be positive", t.name)
		}
	}
	if c.Timeouts.Settle < 0 {
		return fmt.Errorf("timeouts.settle cannot be negative")
	}
	if c.Timeouts.Run < 0 {
		return fmt.Errorf("timeouts.run cannot be negative")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return fmt.Errorf("artifacts.output_dir is required when artifacts are enabled")
	}
	return nil
}
