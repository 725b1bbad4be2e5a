package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/unlp/assets"
	configapp "github.com/doeshing/unlp/internal/application/config"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/pkg/filesystem"
	"github.com/doeshing/unlp/internal/ports"
)

// PathEnvVar points the loader at an alternate config file.
const PathEnvVar = domain.EnvPrefix + "CONFIG"

// FileLoader loads ~/.unlp/config.yaml and overlays UNLP_* environment variables.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path resolves through UNLP_CONFIG or the home directory.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Path returns the file the loader reads.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigFile(path); err != nil {
		return domain.Config{}, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return domain.Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := k.Load(env.Provider(domain.EnvPrefix, ".", envKey), nil); err != nil {
		return domain.Config{}, fmt.Errorf("read environment: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg = hydrateDefaults(cfg)
	if err := configapp.Validate(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Save validates and writes cfg to the resolved path.
func (l *FileLoader) Save(cfg domain.Config) error {
	if err := configapp.Validate(cfg); err != nil {
		return err
	}
	path := l.resolvePath()
	if err := filesystem.EnsureParentDir(path, domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Reset overwrites the config file with the embedded defaults.
func (l *FileLoader) Reset() (domain.Config, error) {
	path := l.resolvePath()
	if err := filesystem.EnsureParentDir(path, domain.DirectoryPermissions); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
		return domain.Config{}, err
	}
	return DefaultConfig(), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(PathEnvVar); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filesystem.StatePath("config.yaml")
}

// envKey maps UNLP_BACKEND__BASE_URL to backend.base_url.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, domain.EnvPrefix)), "__", ".")
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := filesystem.EnsureParentDir(path, domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// DefaultConfig mirrors assets/defaults/config.yaml.
func DefaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Backend: domain.BackendSettings{
			BaseURL:        domain.DefaultBackendBaseURL,
			TimeoutSeconds: int(domain.DefaultHTTPClientTimeout.Seconds()),
		},
		Preferences: domain.Preferences{
			DefaultModel: domain.DefaultModelID,
		},
		History: domain.HistorySettings{
			Backend: domain.HistoryBackendMemory,
		},
		Logging: domain.LoggingSettings{
			Level: "info",
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = domain.DefaultBackendBaseURL
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = int(domain.DefaultHTTPClientTimeout.Seconds())
	}
	if cfg.Preferences.DefaultModel == "" {
		cfg.Preferences.DefaultModel = domain.DefaultModelID
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = domain.HistoryBackendMemory
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.File = filesystem.ExpandHome(cfg.Logging.File)
	cfg.Telemetry.File = filesystem.ExpandHome(cfg.Telemetry.File)
	return cfg
}


var _ ports.ConfigProvider = (*FileLoader)(nil)
