package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/yiblet/clipvault/internal/embedding"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/search"
	"github.com/yiblet/clipvault/internal/store"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CLIPVAULT_PAGE_SIZE.
const EnvPrefix = "clipvault"

const (
	ConfigDir      = ".config/clipvault"
	ConfigFile     = "config.yaml"
	DatabaseFile   = "clipvault.db"
	MaxHistorySize = 100000
)

// Config represents the clipvault configuration
type Config struct {
	HistoryLimit        int     `yaml:"history_limit" envconfig:"HISTORY_LIMIT"`
	DatabasePath        string  `yaml:"database_path,omitempty" envconfig:"DATABASE_PATH"`
	BlobDir             string  `yaml:"blob_dir,omitempty" envconfig:"BLOB_DIR"`
	PageSize            int     `yaml:"page_size" envconfig:"PAGE_SIZE"`
	DuplicatePolicy     string  `yaml:"duplicate_policy" envconfig:"DUPLICATE_POLICY"`
	RecapturePolicy     string  `yaml:"recapture_policy" envconfig:"RECAPTURE_POLICY"`
	SearchMode          string  `yaml:"search_mode" envconfig:"SEARCH_MODE"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" envconfig:"SIMILARITY_THRESHOLD"`
	SemanticWeight      float64 `yaml:"semantic_weight" envconfig:"SEMANTIC_WEIGHT"`
	KeywordWeight       float64 `yaml:"keyword_weight" envconfig:"KEYWORD_WEIGHT"`
	EmbedProvider       string  `yaml:"embed_provider" envconfig:"EMBED_PROVIDER"`
	EmbedModel          string  `yaml:"embed_model" envconfig:"EMBED_MODEL"`
	EmbedURL            string  `yaml:"embed_url" envconfig:"EMBED_URL"`
	AutoEmbed           bool    `yaml:"auto_embed" envconfig:"AUTO_EMBED"`
	PasteCommand        string  `yaml:"paste_command,omitempty" envconfig:"PASTE_COMMAND"`
	Editor              string  `yaml:"editor,omitempty" envconfig:"EDITOR"`
	LogLevel            string  `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit:        1000,
		PageSize:            history.DefaultPageSize,
		DuplicatePolicy:     string(store.DuplicateBump),
		RecapturePolicy:     string(history.MoveToFront),
		SearchMode:          string(search.ModeHybrid),
		SimilarityThreshold: search.DefaultThreshold,
		SemanticWeight:      search.DefaultFusionConfig.SemanticWeight,
		KeywordWeight:       search.DefaultFusionConfig.KeywordWeight,
		EmbedProvider:       embedding.ProviderNone,
		EmbedModel:          "nomic-embed-text",
		EmbedURL:            "http://localhost:11434",
		LogLevel:            "warn",
	}
}

// ResolveDatabasePath returns the database file, defaulting to
// ~/.config/clipvault/clipvault.db. ":memory:" is returned as is.
func (c *Config) ResolveDatabasePath() (string, error) {
	if c.DatabasePath == ":memory:" || filepath.IsAbs(c.DatabasePath) {
		return c.DatabasePath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	if c.DatabasePath == "" {
		return filepath.Join(homeDir, ConfigDir, DatabaseFile), nil
	}
	return filepath.Join(homeDir, ConfigDir, c.DatabasePath), nil
}

// Fusion returns the hybrid search weights.
func (c *Config) Fusion() search.FusionConfig {
	return search.FusionConfig{SemanticWeight: c.SemanticWeight, KeywordWeight: c.KeywordWeight}
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a manager for ~/.config/clipvault/config.yaml,
// or the file named by CLIPVAULT_CONFIG.
func NewConfigManager() (*ConfigManager, error) {
	if p := os.Getenv("CLIPVAULT_CONFIG"); p != "" {
		return NewConfigManagerWithPath(p), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return &ConfigManager{
		configPath: filepath.Join(homeDir, ConfigDir, ConfigFile),
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration file, falling back to defaults for a missing
// file or missing keys, then applies CLIPVAULT_* environment overrides.
func (cm *ConfigManager) Load() (*Config, error) {
	config, err := cm.loadFile()
	if err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// loadFile reads only the file, so that Save never persists environment
// overrides.
func (cm *ConfigManager) loadFile() (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(cm.configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func validate(config *Config) error {
	if config.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be greater than 0")
	}
	if config.HistoryLimit > MaxHistorySize {
		return fmt.Errorf("history_limit cannot exceed %d items", MaxHistorySize)
	}
	if config.PageSize <= 0 {
		return fmt.Errorf("page_size must be greater than 0")
	}
	switch store.DuplicatePolicy(strings.ToLower(config.DuplicatePolicy)) {
	case "", store.DuplicateBump, store.DuplicateInsert:
	default:
		return fmt.Errorf("duplicate_policy must be %q or %q", store.DuplicateBump, store.DuplicateInsert)
	}
	if _, err := history.ParseRecapturePolicy(config.RecapturePolicy); err != nil {
		return err
	}
	if _, err := search.ParseMode(config.SearchMode); err != nil {
		return err
	}
	if config.SimilarityThreshold < -1 || config.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be between -1 and 1")
	}
	if config.SemanticWeight < 0 || config.KeywordWeight < 0 {
		return fmt.Errorf("search weights cannot be negative")
	}
	if _, err := embedding.New(config.EmbedProvider, config.EmbedModel, config.EmbedURL); err != nil {
		return err
	}
	switch strings.ToLower(config.LogLevel) {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}
	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// field binds a config key to its accessors.
type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(p func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error { *p(c) = v; return nil },
	}
}

func intField(key string, p func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer value for %s: %s", key, v)
			}
			*p(c) = n
			return nil
		},
	}
}

func floatField(key string, p func(*Config) *float64) field {
	return field{
		get: func(c *Config) string { return strconv.FormatFloat(*p(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number value for %s: %s", key, v)
			}
			*p(c) = f
			return nil
		},
	}
}

func boolField(key string, p func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			switch v {
			case "true":
				*p(c) = true
			case "false":
				*p(c) = false
			default:
				return fmt.Errorf("invalid boolean value for %s: %s (must be 'true' or 'false')", key, v)
			}
			return nil
		},
	}
}

var fields = map[string]field{
	"history_limit":        intField("history_limit", func(c *Config) *int { return &c.HistoryLimit }),
	"database_path":        stringField(func(c *Config) *string { return &c.DatabasePath }),
	"blob_dir":             stringField(func(c *Config) *string { return &c.BlobDir }),
	"page_size":            intField("page_size", func(c *Config) *int { return &c.PageSize }),
	"duplicate_policy":     stringField(func(c *Config) *string { return &c.DuplicatePolicy }),
	"recapture_policy":     stringField(func(c *Config) *string { return &c.RecapturePolicy }),
	"search_mode":          stringField(func(c *Config) *string { return &c.SearchMode }),
	"similarity_threshold": floatField("similarity_threshold", func(c *Config) *float64 { return &c.SimilarityThreshold }),
	"semantic_weight":      floatField("semantic_weight", func(c *Config) *float64 { return &c.SemanticWeight }),
	"keyword_weight":       floatField("keyword_weight", func(c *Config) *float64 { return &c.KeywordWeight }),
	"embed_provider":       stringField(func(c *Config) *string { return &c.EmbedProvider }),
	"embed_model":          stringField(func(c *Config) *string { return &c.EmbedModel }),
	"embed_url":            stringField(func(c *Config) *string { return &c.EmbedURL }),
	"auto_embed":           boolField("auto_embed", func(c *Config) *bool { return &c.AutoEmbed }),
	"paste_command":        stringField(func(c *Config) *string { return &c.PasteCommand }),
	"editor":               stringField(func(c *Config) *string { return &c.Editor }),
	"log_level":            stringField(func(c *Config) *string { return &c.LogLevel }),
}

func lookup(key string) (field, string, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	f, ok := fields[norm]
	if !ok {
		return field{}, "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return f, norm, nil
}

// Keys returns every configuration key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Update modifies a specific configuration value in the file. Keys accept
// either dashes or underscores.
func (cm *ConfigManager) Update(key, value string) error {
	f, _, err := lookup(key)
	if err != nil {
		return err
	}
	config, err := cm.loadFile()
	if err != nil {
		return err
	}
	if err := f.set(config, value); err != nil {
		return err
	}
	return cm.Save(config)
}

// Get returns the effective value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	f, _, err := lookup(key)
	if err != nil {
		return "", err
	}
	config, err := cm.Load()
	if err != nil {
		return "", err
	}
	if v := f.get(config); v != "" {
		return v, nil
	}
	return "[default]", nil
}

// List returns all effective configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(fields))
	for k, f := range fields {
		v := f.get(config)
		if v == "" {
			v = "[default]"
		}
		result[k] = v
	}
	return result, nil
}
