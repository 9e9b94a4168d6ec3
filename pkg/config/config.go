/*
Package config manages TOML config for emojiserve.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/emojiserve/internal/utils"
	"github.com/bastiangx/emojiserve/pkg/storage"
	"github.com/charmbracelet/log"
)

const appDir = "emojiserve"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Search SearchConfig `toml:"search"`
	Recent RecentConfig `toml:"recent"`
	GIF    GIFConfig    `toml:"gif"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit int    `toml:"max_limit"`
	MaxQuery int    `toml:"max_query"`
	Codec    string `toml:"codec"`
}

// SearchConfig holds local search options.
type SearchConfig struct {
	DefaultLimit int `toml:"default_limit"`
	CacheSize    int `toml:"cache_size"`
}

// RecentConfig holds history options. An empty path stores history next to the config file.
type RecentConfig struct {
	MaxRecents int    `toml:"max_recents"`
	Backend    string `toml:"backend"`
	Path       string `toml:"path"`
	Incognito  bool   `toml:"incognito"`
}

// GIFConfig holds the remote GIF backend and paging options.
type GIFConfig struct {
	Enabled                 bool   `toml:"enabled"`
	APIBase                 string `toml:"api_base"`
	APIKey                  string `toml:"api_key"`
	ClientKey               string `toml:"client_key"`
	PageSize                int    `toml:"page_size"`
	PrefetchThreshold       int    `toml:"prefetch_threshold"`
	FetchTimeoutMs          int    `toml:"fetch_timeout_ms"`
	ScrollIntervalMs        int    `toml:"scroll_interval_ms"`
	ValidationIntervalHours int    `toml:"validation_interval_hours"`
}

func (g GIFConfig) FetchTimeout() time.Duration {
	return time.Duration(g.FetchTimeoutMs) * time.Millisecond
}

func (g GIFConfig) ScrollInterval() time.Duration {
	return time.Duration(g.ScrollIntervalMs) * time.Millisecond
}

func (g GIFConfig) ValidationInterval() time.Duration {
	return time.Duration(g.ValidationIntervalHours) * time.Hour
}

// StoragePath returns where history is kept, relative to configPath when unset.
func (r RecentConfig) StoragePath(configPath string) string {
	if r.Path != "" || r.Backend == storage.BackendMemory {
		return r.Path
	}
	dir := filepath.Dir(configPath)
	if configPath == "" {
		if d, err := GetConfigDir(); err == nil {
			dir = d
		} else {
			dir = os.TempDir()
		}
	}
	if r.Backend == storage.BackendSQLite {
		return filepath.Join(dir, "recents.sqlite")
	}
	return filepath.Join(dir, "recents.db")
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.ExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", appDir)
	if utils.WritableDir(primaryPath) {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", appDir)
	if utils.WritableDir(macOSPath) {
		return macOSPath, nil
	}
	execDir, err := utils.ExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/emojiserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit: 64,
			MaxQuery: 64,
			Codec:    "json",
		},
		Search: SearchConfig{
			DefaultLimit: 24,
			CacheSize:    256,
		},
		Recent: RecentConfig{
			MaxRecents: 10,
			Backend:    storage.BackendBolt,
		},
		GIF: GIFConfig{
			Enabled:                 false,
			APIBase:                 "https://tenor.googleapis.com/v2",
			ClientKey:               appDir,
			PageSize:                30,
			PrefetchThreshold:       300,
			FetchTimeoutMs:          10000,
			ScrollIntervalMs:        16,
			ValidationIntervalHours: 24,
		},
	}
}

// InitConfig loads config from file or writes the defaults there if missing.
// Any failure degrades to builtin defaults.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Out of range values fall back to defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		if config, err = tryPartialParse(configPath); err != nil {
			return nil, err
		}
	}
	config.normalize()
	return config, nil
}

// normalize replaces values the engine cannot run with.
func (c *Config) normalize() {
	d := DefaultConfig()
	fix := func(name string, bad bool, field *int, def int) {
		if bad {
			log.Warnf("Invalid %s=%d, using %d", name, *field, def)
			*field = def
		}
	}
	fix("server.max_limit", c.Server.MaxLimit < 1, &c.Server.MaxLimit, d.Server.MaxLimit)
	fix("server.max_query", c.Server.MaxQuery < 1, &c.Server.MaxQuery, d.Server.MaxQuery)
	fix("search.default_limit", c.Search.DefaultLimit < 1, &c.Search.DefaultLimit, d.Search.DefaultLimit)
	fix("search.default_limit", c.Search.DefaultLimit > c.Server.MaxLimit, &c.Search.DefaultLimit, c.Server.MaxLimit)
	fix("search.cache_size", c.Search.CacheSize < 0, &c.Search.CacheSize, d.Search.CacheSize)
	fix("recent.max_recents", c.Recent.MaxRecents < 1, &c.Recent.MaxRecents, d.Recent.MaxRecents)
	fix("gif.page_size", c.GIF.PageSize < 1, &c.GIF.PageSize, d.GIF.PageSize)
	fix("gif.prefetch_threshold", c.GIF.PrefetchThreshold < 0, &c.GIF.PrefetchThreshold, d.GIF.PrefetchThreshold)
	fix("gif.fetch_timeout_ms", c.GIF.FetchTimeoutMs < 1, &c.GIF.FetchTimeoutMs, d.GIF.FetchTimeoutMs)
	fix("gif.scroll_interval_ms", c.GIF.ScrollIntervalMs < 0, &c.GIF.ScrollIntervalMs, d.GIF.ScrollIntervalMs)
	fix("gif.validation_interval_hours", c.GIF.ValidationIntervalHours < 1, &c.GIF.ValidationIntervalHours, d.GIF.ValidationIntervalHours)

	switch c.Recent.Backend {
	case storage.BackendMemory, storage.BackendBolt, storage.BackendSQLite:
	default:
		log.Warnf("Unknown recent.backend %q, using %s", c.Recent.Backend, d.Recent.Backend)
		c.Recent.Backend = d.Recent.Backend
	}
}

// tryPartialParse keeps every well-typed value of a file that failed strict decoding
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLMap(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.Section(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.Section(tempConfig, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.Section(tempConfig, "recent"); ok {
		extractRecentConfig(section, &config.Recent)
	}
	if section, ok := utils.Section(tempConfig, "gif"); ok {
		extractGIFConfig(section, &config.GIF)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	utils.Assign(data, "max_limit", &server.MaxLimit)
	utils.Assign(data, "max_query", &server.MaxQuery)
	utils.Assign(data, "codec", &server.Codec)
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	utils.Assign(data, "default_limit", &search.DefaultLimit)
	utils.Assign(data, "cache_size", &search.CacheSize)
}

func extractRecentConfig(data map[string]any, recent *RecentConfig) {
	utils.Assign(data, "max_recents", &recent.MaxRecents)
	utils.Assign(data, "backend", &recent.Backend)
	utils.Assign(data, "path", &recent.Path)
	utils.Assign(data, "incognito", &recent.Incognito)
}

func extractGIFConfig(data map[string]any, gif *GIFConfig) {
	utils.Assign(data, "enabled", &gif.Enabled)
	utils.Assign(data, "api_base", &gif.APIBase)
	utils.Assign(data, "api_key", &gif.APIKey)
	utils.Assign(data, "client_key", &gif.ClientKey)
	utils.Assign(data, "page_size", &gif.PageSize)
	utils.Assign(data, "prefetch_threshold", &gif.PrefetchThreshold)
	utils.Assign(data, "fetch_timeout_ms", &gif.FetchTimeoutMs)
	utils.Assign(data, "scroll_interval_ms", &gif.ScrollIntervalMs)
	utils.Assign(data, "validation_interval_hours", &gif.ValidationIntervalHours)
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.AbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the config values and saves to file. An empty configPath
// only updates the values in memory.
func (c *Config) Update(configPath string, maxLimit, defaultLimit *int) error {
	if maxLimit != nil {
		c.Server.MaxLimit = *maxLimit
	}
	if defaultLimit != nil {
		c.Search.DefaultLimit = *defaultLimit
	}
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
