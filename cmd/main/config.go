package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
	"github.com/CTAG07/loremipsum/pkg/templating"
)

// ServerConfig holds the configuration for the HTTP server.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	LogLevel       string   `json:"log_level" yaml:"log_level"`
	DatabasePath   string   `json:"database_path" yaml:"database_path"`
	TemplateDir    string   `json:"template_dir" yaml:"template_dir"`
	WatchTemplates bool     `json:"watch_templates" yaml:"watch_templates"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// GenerationConfig holds defaults for the lorem endpoints.
type GenerationConfig struct {
	// DefaultSample names the sample used when a request names none. It is
	// looked up among the built-in samples first, then in the store.
	DefaultSample string `json:"default_sample" yaml:"default_sample"`

	// MaxAmount caps the amount parameter of the plural endpoints.
	MaxAmount int `json:"max_amount" yaml:"max_amount"`

	// MaxSentenceLen and MaxParagraphLen cap explicit lengths, means and
	// sigmas in words per sentence and sentences per paragraph. Neither may
	// exceed lorem.MaxLength.
	MaxSentenceLen  int `json:"max_sentence_len" yaml:"max_sentence_len"`
	MaxParagraphLen int `json:"max_paragraph_len" yaml:"max_paragraph_len"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server     *ServerConfig              `json:"server_config" yaml:"server_config"`
	Templates  *templating.TemplateConfig `json:"template_config" yaml:"template_config"`
	Generation *GenerationConfig          `json:"generation_config" yaml:"generation_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:           ":7270",
		LogLevel:       "info",
		DatabasePath:   "./data/loremipsum.db",
		TemplateDir:    "./data/templates",
		WatchTemplates: true,
		AllowedOrigins: []string{"*"},
	}
}

// DefaultGenerationConfig creates a generation configuration with default values.
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		DefaultSample:   samples.DefaultName,
		MaxAmount:       1000,
		MaxSentenceLen:  100,
		MaxParagraphLen: 50,
	}
}

// DefaultConfig returns a complete configuration with default values.
func DefaultConfig() *Config {
	tc := templating.DefaultConfig()
	return &Config{
		Server:     DefaultServerConfig(),
		Templates:  &tc,
		Generation: DefaultGenerationConfig(),
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// marshalConfig encodes config as YAML or indented JSON depending on the
// file extension of path.
func marshalConfig(path string, config *Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(config)
	}
	return json.MarshalIndent(config, "", "  ")
}

func unmarshalConfig(path string, data []byte, config *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, config)
	}
	return json.Unmarshal(data, config)
}

// LoadConfig reads the configuration from a JSON or YAML file at the given
// path. If the file doesn't exist, it creates one with default values.
// Sections missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = marshalConfig(path, config)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The server can still run with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = unmarshalConfig(path, file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	def := DefaultConfig()
	if config.Server == nil {
		config.Server = def.Server
	}
	if config.Templates == nil {
		config.Templates = def.Templates
	}
	if config.Generation == nil {
		config.Generation = def.Generation
	}
	if config.Generation.MaxSentenceLen == 0 {
		config.Generation.MaxSentenceLen = def.Generation.MaxSentenceLen
	}
	if config.Generation.MaxParagraphLen == 0 {
		config.Generation.MaxParagraphLen = def.Generation.MaxParagraphLen
	}
	return config, nil
}

// ConfigManager handles thread-safe access to the configuration and pushes
// template limits to the template manager.
type ConfigManager struct {
	config     *Config
	mu         sync.RWMutex
	configPath string
	logger     *slog.Logger
	tm         *templating.TemplateManager
}

// NewConfigManager loads the config and initializes the manager.
func NewConfigManager(path string) (*ConfigManager, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return &ConfigManager{
		config:     cfg,
		configPath: path,
		// Log to stdout before the application-specific logger is set.
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})),
	}, nil
}

// SetTemplateManager registers the template manager to receive config updates.
func (cm *ConfigManager) SetTemplateManager(tm *templating.TemplateManager) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.tm = tm
	if tm != nil {
		tm.SetConfig(cm.config.Templates)
	}
}

// SetLogger sets the logger.
func (cm *ConfigManager) SetLogger(logger *slog.Logger) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.logger = logger
}

// Get returns a copy of the current configuration.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return *cm.config
}

// Update validates newConfig, applies it and saves it to disk. Server
// settings take effect on the next restart.
func (cm *ConfigManager) Update(newConfig Config) error {
	if newConfig.Server == nil || newConfig.Templates == nil || newConfig.Generation == nil {
		return fmt.Errorf("configuration must contain server, template and generation sections")
	}
	if newConfig.Generation.MaxAmount < 1 {
		return fmt.Errorf("max_amount must be at least 1, got %d", newConfig.Generation.MaxAmount)
	}
	if n := newConfig.Generation.MaxSentenceLen; n < 1 || n > lorem.MaxLength {
		return fmt.Errorf("max_sentence_len must be between 1 and %d, got %d", lorem.MaxLength, n)
	}
	if n := newConfig.Generation.MaxParagraphLen; n < 1 || n > lorem.MaxLength {
		return fmt.Errorf("max_paragraph_len must be between 1 and %d, got %d", lorem.MaxLength, n)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	data, err := marshalConfig(cm.configPath, &newConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err = atomic.WriteFile(cm.configPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	*cm.config = newConfig
	if cm.tm != nil {
		cm.tm.SetConfig(newConfig.Templates)
	}
	cm.logger.Info("Configuration updated", slog.String("path", cm.configPath))
	return nil
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
