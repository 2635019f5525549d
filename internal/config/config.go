package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"ledgergrip/internal/eventbus"
)

// FileName is the name of the per-directory configuration file
const FileName = ".ledgergrip.toml"

// Config represents the application configuration
type Config struct {
	Version  int         `toml:"version"`
	Database string      `toml:"database"` // sqlite file path
	Tenant   string      `toml:"tenant"`   // tenant uuid the session is scoped to
	UI       UISettings  `toml:"ui"`
	Log      LogSettings `toml:"log"`
}

// UISettings represents list and rendering configuration
type UISettings struct {
	DebounceMs       int  `toml:"debounce_ms"`
	Overscan         int  `toml:"overscan"`
	RowHeight        int  `toml:"row_height"`
	InvoiceRowHeight int  `toml:"invoice_row_height"`
	ShowTotals       bool `toml:"show_totals"`

	// RemoteFilter refetches with the settled search as a database
	// prefilter; FetchLimit caps the rows loaded per list, 0 for all
	RemoteFilter bool `toml:"remote_filter"`
	FetchLimit   int  `toml:"fetch_limit"`
}

// LogSettings configures the zap logger
type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Debounce returns the configured quiet period for search input
func (u UISettings) Debounce() time.Duration {
	return time.Duration(u.DebounceMs) * time.Millisecond
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service bound to the given file
func NewConfigService(path string) ConfigService {
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	return &configService{filePath: path, bus: bus}
}

// Load loads the configuration from the bound file, falling back to
// defaults when it does not exist yet
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath, Database: cfg.Database})
	}
	return cfg, nil
}

// Save saves the configuration to the bound file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// normalize replaces out-of-range values with defaults
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.UI.DebounceMs < 0 {
		c.UI.DebounceMs = def.UI.DebounceMs
	}
	if c.UI.Overscan < 0 {
		c.UI.Overscan = def.UI.Overscan
	}
	if c.UI.RowHeight <= 0 {
		c.UI.RowHeight = def.UI.RowHeight
	}
	if c.UI.InvoiceRowHeight <= 0 {
		c.UI.InvoiceRowHeight = def.UI.InvoiceRowHeight
	}
	if c.UI.FetchLimit < 0 {
		c.UI.FetchLimit = 0
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Output == "" {
		c.Log.Output = def.Log.Output
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Database: "ledgergrip.db",
		UI: UISettings{
			DebounceMs:       150,
			Overscan:         5,
			RowHeight:        1,
			InvoiceRowHeight: 2,
			ShowTotals:       true,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "console",
			Output: "ledgergrip.log",
		},
	}
}
