package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/session"
)

// FileName is the project configuration file looked up under the scan root.
const FileName = "strex.yaml"

// Config is the project configuration loaded from strex.yaml. Zero values
// fall back to the defaults of the selected preset.
type Config struct {
	// Preset names the resource framework conventions, one of PresetNames().
	Preset string `yaml:"preset"`

	// Scan settings.
	FileTypes            []string `yaml:"file_types"`
	LogCalls             []string `yaml:"log_calls"`
	ResourcePrefix       string   `yaml:"resource_prefix"`
	ResourcePathTemplate string   `yaml:"resource_path_template"`

	// Language settings.
	SourceLang string `yaml:"source_lang"`
	TargetLang string `yaml:"target_lang"`

	// Translation settings.
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	Temperature       float32 `yaml:"temperature"`
	PromptTemplate    string  `yaml:"prompt_template"`
	SystemPrompt      string  `yaml:"system_prompt"`
	BatchSize         int     `yaml:"batch_size"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	MaxInFlight       int     `yaml:"max_in_flight"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
	ReferenceLimit    int     `yaml:"reference_limit"`

	// Cache settings. RedisURL switches the cache from in-process memory
	// to Redis; CacheTTLSeconds bounds entry lifetime in either backend.
	RedisURL        string `yaml:"redis_url"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`

	// SessionPath is where the curation session is persisted, relative to
	// the scan root unless absolute.
	SessionPath string `yaml:"session_path"`
}

// Default returns the configuration used when no strex.yaml is present.
func Default() *Config {
	return &Config{
		Preset:         "libres",
		SourceLang:     "zh",
		TargetLang:     "en",
		Model:          "gpt-4o-mini",
		Temperature:    0.3,
		BatchSize:      50,
		TimeoutSeconds: 120,
		MaxInFlight:    1,
		ReferenceLimit: 10,
		SessionPath:    filepath.Join(".strex", "session.json"),
	}
}

// Load reads a configuration file and fills unset fields from Default and
// the selected preset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads <root>/strex.yaml when it exists and falls back to
// Default otherwise.
func LoadOrDefault(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.normalize(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Hooks returns the FormatHooks implementation for the configured preset,
// already validated by the self-test.
func (c *Config) Hooks() (FormatHooks, error) {
	preset, ok := PresetByName(c.Preset)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (have %v)", c.Preset, PresetNames())
	}
	if err := ValidateHooks(preset); err != nil {
		return nil, err
	}
	return preset, nil
}

// Snapshot captures the settings a saved session records, so a later run
// can detect that the session was produced under different settings.
func (c *Config) Snapshot() session.Snapshot {
	return session.Snapshot{
		Preset:               c.Preset,
		SourceLang:           c.SourceLang,
		TargetLang:           c.TargetLang,
		ResourcePathTemplate: c.ResourcePathTemplate,
		PromptTemplate:       c.PromptTemplate,
		BatchSize:            c.BatchSize,
	}
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	if _, ok := PresetByName(c.Preset); !ok {
		return fmt.Errorf("unknown preset %q (have %v)", c.Preset, PresetNames())
	}
	if c.SourceLang == "" || c.TargetLang == "" {
		return fmt.Errorf("source_lang and target_lang must be set")
	}
	if strex.SameLanguage(c.SourceLang, c.TargetLang) {
		return fmt.Errorf("source_lang %q and target_lang %q are the same language", c.SourceLang, c.TargetLang)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.MaxInFlight <= 0 {
		return fmt.Errorf("max_in_flight must be positive, got %d", c.MaxInFlight)
	}
	if c.PromptTemplate != "" {
		if _, err := strex.RenderTemplate(c.PromptTemplate, map[string]string{
			"target_language":        "",
			"source_language":        "",
			"reference_translations": "",
			"entries":                "",
		}); err != nil {
			return fmt.Errorf("prompt_template: %w", err)
		}
	}
	return nil
}

// normalize fills preset-derived defaults and validates the result.
func (c *Config) normalize() error {
	if preset, ok := PresetByName(c.Preset); ok {
		if c.ResourcePathTemplate == "" {
			c.ResourcePathTemplate = preset.ResourcePathTemplate
		}
		if c.ResourcePrefix == "" {
			c.ResourcePrefix = preset.ResourcePrefix
		}
	}
	return c.Validate()
}
