package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ledgergrip/internal/config"
	"ledgergrip/internal/eventbus"
	"ledgergrip/internal/logger"
)

// options hold the flag values shared by all commands
type options struct {
	db         string
	configPath string
	tenant     string
	memory     bool
}

// session is what every command needs before touching data
type session struct {
	config     *config.Config
	configPath string
	configSvc  config.ConfigService
	tenant     uuid.UUID
	log        *zap.Logger
}

// resolveConfigPath returns the --config flag or the config file next to the
// database
func (o *options) resolveConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	if o.db != "" {
		return filepath.Join(filepath.Dir(o.db), config.FileName)
	}
	return config.FileName
}

// besideConfig resolves a relative file name against the directory of the
// config file
func besideConfig(configPath, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(configPath), name)
}

// openSession loads the configuration, applies flag overrides and makes
// sure the session has a tenant. A generated tenant is written back so
// the next run sees the same data.
func openSession(o *options, bus eventbus.EventBus) (*session, error) {
	path := o.resolveConfigPath()
	var svc config.ConfigService
	if bus != nil {
		svc = config.NewConfigServiceWithBus(path, bus)
	} else {
		svc = config.NewConfigService(path)
	}

	cfg, err := svc.Load()
	if err != nil {
		return nil, err
	}
	if o.db != "" {
		cfg.Database = o.db
	} else {
		cfg.Database = besideConfig(path, cfg.Database)
	}

	output := cfg.Log.Output
	switch strings.ToLower(output) {
	case "stdout", "stderr":
	default:
		output = besideConfig(path, output)
	}
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	s := &session{config: cfg, configPath: path, configSvc: svc, log: log}

	raw := o.tenant
	if raw == "" {
		raw = cfg.Tenant
	}
	if raw == "" {
		s.tenant = uuid.New()
		cfg.Tenant = s.tenant.String()
		if err := svc.Save(cfg); err != nil {
			log.Warn("failed to save generated tenant", zap.String("path", path), zap.Error(err))
		} else {
			log.Info("created tenant", zap.String("tenant", cfg.Tenant), zap.String("path", path))
		}
		return s, nil
	}

	s.tenant, err = uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant %q: %w", raw, err)
	}
	return s, nil
}
