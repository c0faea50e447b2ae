// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "switchyard"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "SWITCHYARD"
)

type (
	// Config holds the application configuration.
	Config struct {
		// WorkspaceRoot is the directory containing BRANCH_DIRECTORY.json
		// and the branch trees. The reserved handle "@" resolves to it.
		WorkspaceRoot string `toml:"workspace_root" mapstructure:"workspace_root"`
		// RouterRoot is the root of the persisted registry tree
		// (central/ and commands/ live under it).
		RouterRoot string `toml:"router_root" mapstructure:"router_root"`
		// Supervise configures child process supervision.
		Supervise SuperviseConfig `toml:"supervise" mapstructure:"supervise"`
		// Discovery configures branch command discovery.
		Discovery DiscoveryConfig `toml:"discovery" mapstructure:"discovery"`
		// Notify configures the outbound failure-notification sink.
		Notify NotifyConfig `toml:"notify" mapstructure:"notify"`
		// UI configures the user interface.
		UI UIConfig `toml:"ui" mapstructure:"ui"`
	}

	// SuperviseConfig holds timeout policy tunables for child processes.
	SuperviseConfig struct {
		// DefaultTimeoutSeconds bounds ordinary child commands.
		DefaultTimeoutSeconds int `toml:"default_timeout_seconds" mapstructure:"default_timeout_seconds"`
		// LongTimeoutSeconds bounds commands in the LongBoundedCommands allowlist.
		LongTimeoutSeconds int `toml:"long_timeout_seconds" mapstructure:"long_timeout_seconds"`
		// LongRunningKeywords is the Layer-1 list: any argv token matching
		// one of these makes the caller pass an unlimited timeout hint.
		LongRunningKeywords []string `toml:"long_running_keywords" mapstructure:"long_running_keywords"`
		// LongBoundedCommands is the Layer-2 allowlist: commands mapped
		// back from unlimited to the long bounded timeout.
		LongBoundedCommands []string `toml:"long_bounded_commands" mapstructure:"long_bounded_commands"`
	}

	// DiscoveryConfig holds command discovery tunables.
	DiscoveryConfig struct {
		// HelpFlag is the flag passed to branch entry points for runtime
		// introspection.
		HelpFlag string `toml:"help_flag" mapstructure:"help_flag"`
		// HelpTimeoutSeconds bounds the help introspection subprocess.
		HelpTimeoutSeconds int `toml:"help_timeout_seconds" mapstructure:"help_timeout_seconds"`
		// IgnoredModules are module base names that are never registered
		// and never scanned.
		IgnoredModules []string `toml:"ignored_modules" mapstructure:"ignored_modules"`
		// ScanExtensions are the implementation-file extensions the static
		// source scan walks.
		ScanExtensions []string `toml:"scan_extensions" mapstructure:"scan_extensions"`
	}

	// NotifyConfig holds the outbound failure-notification settings.
	NotifyConfig struct {
		// SinkURL is the event sink endpoint. Empty disables delivery.
		SinkURL string `toml:"sink_url" mapstructure:"sink_url"`
		// TimeoutSeconds bounds each delivery attempt.
		TimeoutSeconds int `toml:"timeout_seconds" mapstructure:"timeout_seconds"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme is the stored color scheme ("auto", "dark", "light").
		// No output code reads it; the CLI styles use a fixed palette.
		ColorScheme string `toml:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output.
		Verbose bool `toml:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	workspace := defaultWorkspaceRoot()
	return &Config{
		WorkspaceRoot: workspace,
		RouterRoot:    filepath.Join(workspace, ".switchyard"),
		Supervise: SuperviseConfig{
			DefaultTimeoutSeconds: 30,
			LongTimeoutSeconds:    120,
			LongRunningKeywords: []string{
				"start", "watch", "monitor", "serve", "daemon", "audit",
				"sync", "backup", "restore", "close", "checklist", "tail",
				"listen",
			},
			LongBoundedCommands: []string{"backup_system", "checklist", "close"},
		},
		Discovery: DiscoveryConfig{
			HelpFlag:           "--help",
			HelpTimeoutSeconds: 10,
			IgnoredModules: []string{
				"__main__", "__init__", "discovery", "scratch", "backup",
			},
			ScanExtensions: []string{".py", ".sh", ".rb", ".js"},
		},
		Notify: NotifyConfig{
			SinkURL:        "",
			TimeoutSeconds: 3,
		},
		UI: UIConfig{
			ColorScheme: "auto",
			Verbose:     false,
		},
	}
}

// defaultWorkspaceRoot derives the workspace root when no config sets one:
// $SWITCHYARD_WORKSPACE_ROOT, else ~/workspace.
func defaultWorkspaceRoot() string {
	if ws := os.Getenv(EnvPrefix + "_WORKSPACE_ROOT"); ws != "" {
		return ws
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "workspace"
	}
	return filepath.Join(home, "workspace")
}

// ConfigDir returns the switchyard configuration directory.
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the full path to the config file.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// LoadOptions controls config loading.
type LoadOptions struct {
	// ConfigFilePath is an explicit config file path (--config flag).
	// Empty means the default location.
	ConfigFilePath string
}

// Load reads configuration from the default location.
func Load() (*Config, error) {
	return LoadWith(LoadOptions{})
}

// LoadWith reads configuration honoring the given options. A missing file
// at the default location returns defaults without error; an explicit path
// that cannot be read is an error.
func LoadWith(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetConfigType(ConfigFileExt)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if opts.ConfigFilePath != "" {
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFilePath, err)
		}
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.RouterRoot == "" {
		cfg.RouterRoot = filepath.Join(cfg.WorkspaceRoot, ".switchyard")
	}
	return cfg, nil
}

// setDefaults registers defaults with viper so env overrides bind even
// when no config file exists.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("workspace_root", def.WorkspaceRoot)
	v.SetDefault("router_root", def.RouterRoot)
	v.SetDefault("supervise.default_timeout_seconds", def.Supervise.DefaultTimeoutSeconds)
	v.SetDefault("supervise.long_timeout_seconds", def.Supervise.LongTimeoutSeconds)
	v.SetDefault("supervise.long_running_keywords", def.Supervise.LongRunningKeywords)
	v.SetDefault("supervise.long_bounded_commands", def.Supervise.LongBoundedCommands)
	v.SetDefault("discovery.help_flag", def.Discovery.HelpFlag)
	v.SetDefault("discovery.help_timeout_seconds", def.Discovery.HelpTimeoutSeconds)
	v.SetDefault("discovery.ignored_modules", def.Discovery.IgnoredModules)
	v.SetDefault("discovery.scan_extensions", def.Discovery.ScanExtensions)
	v.SetDefault("notify.sink_url", def.Notify.SinkURL)
	v.SetDefault("notify.timeout_seconds", def.Notify.TimeoutSeconds)
	v.SetDefault("ui.color_scheme", def.UI.ColorScheme)
	v.SetDefault("ui.verbose", def.UI.Verbose)
}

// WriteDefault writes the default configuration as TOML to the given path,
// creating parent directories. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
