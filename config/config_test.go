package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Preset != "libres" || cfg.SourceLang != "zh" || cfg.TargetLang != "en" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.BatchSize != 50 || cfg.MaxInFlight != 1 {
		t.Errorf("batch defaults = %d, %d", cfg.BatchSize, cfg.MaxInFlight)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	yaml := `preset: compose-resources
target_lang: ja
batch_size: 10
redis_url: redis://localhost:6379/1
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Preset != "compose-resources" || cfg.TargetLang != "ja" || cfg.BatchSize != 10 {
		t.Errorf("cfg = %+v", cfg)
	}
	// Unset fields keep defaults; preset-derived fields come from the preset.
	if cfg.SourceLang != "zh" {
		t.Errorf("source lang = %q", cfg.SourceLang)
	}
	if cfg.ResourcePrefix != "Res.string." {
		t.Errorf("resource prefix = %q", cfg.ResourcePrefix)
	}
	if cfg.ResourcePathTemplate == "" {
		t.Errorf("resource path template must default from the preset")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Preset != "libres" {
		t.Errorf("preset = %q", cfg.Preset)
	}
	if cfg.ResourcePathTemplate == "" {
		t.Errorf("normalize must fill the path template")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown preset", func(c *Config) { c.Preset = "nope" }},
		{"same language", func(c *Config) { c.TargetLang = "zh_TW" }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }},
		{"bad prompt template", func(c *Config) { c.PromptTemplate = "{unclosed" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected a validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestHooks(t *testing.T) {
	cfg := Default()
	hooks, err := cfg.Hooks()
	if err != nil {
		t.Fatal(err)
	}
	if hooks == nil {
		t.Fatal("nil hooks")
	}

	cfg.Preset = "unknown"
	if _, err := cfg.Hooks(); err == nil {
		t.Fatal("unknown preset must fail")
	}
}

func TestSnapshot(t *testing.T) {
	cfg := Default()
	snap := cfg.Snapshot()
	if snap.Preset != cfg.Preset || snap.TargetLang != cfg.TargetLang || snap.BatchSize != cfg.BatchSize {
		t.Errorf("snapshot = %+v", snap)
	}
}
