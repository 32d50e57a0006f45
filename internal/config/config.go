// Package config loads dispmode's own configuration (not the systemwide
// display store, which internal/infrastructure/store owns).
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config is the tool configuration, loaded from TOML and environment.
type Config struct {
	// StorePath overrides the systemwide display-configuration file.
	// Empty means the platform default.
	StorePath string `mapstructure:"store_path" json:"store_path,omitempty"`

	// JournalPath is where the apply-history database lives. Empty
	// disables the journal.
	JournalPath string `mapstructure:"journal_path" json:"journal_path,omitempty"`

	Tools   ToolsConfig   `mapstructure:"tools" json:"tools"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
}

// ToolsConfig names the external binaries the adapters shell out to.
type ToolsConfig struct {
	IOReg      string `mapstructure:"ioreg" json:"ioreg,omitempty"`
	LinkHelper string `mapstructure:"link_helper" json:"link_helper,omitempty"`
}

// LoggingConfig mirrors the logging package's options.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level,omitempty"`
	Format string `mapstructure:"format" json:"format,omitempty"`
}

// Manager handles configuration loading.
type Manager struct {
	config *Config
	viper  *viper.Viper
	mu     sync.RWMutex
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // current directory for development

	v.SetEnvPrefix("DISPMODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "DISPMODE_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind DISPMODE_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "DISPMODE_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind DISPMODE_LOG_FORMAT: %w", err)
	}

	return &Manager{viper: v}, nil
}

// Load reads the configuration from file and environment variables. A
// missing config file is not an error; defaults apply.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	m.config = &cfg
	return nil
}

// Get returns the loaded configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		cfg := Defaults()
		return &cfg
	}
	return m.config
}

func (m *Manager) setDefaults() {
	d := Defaults()
	m.viper.SetDefault("store_path", d.StorePath)
	m.viper.SetDefault("journal_path", d.JournalPath)
	m.viper.SetDefault("tools.ioreg", d.Tools.IOReg)
	m.viper.SetDefault("tools.link_helper", d.Tools.LinkHelper)
	m.viper.SetDefault("logging.level", d.Logging.Level)
	m.viper.SetDefault("logging.format", d.Logging.Format)
}
