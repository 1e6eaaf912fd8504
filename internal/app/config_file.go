package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration schema. Nested sections map naturally
// onto flags and env vars.
type FileConfig struct {
	DataDir string `yaml:"dataDir"`
	Addr    string `yaml:"addr"`

	LLM struct {
		Enable  bool          `yaml:"enable"`
		BaseURL string        `yaml:"base"`
		Model   string        `yaml:"model"`
		APIKey  string        `yaml:"key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Max struct {
		TextChars int `yaml:"textChars"`
		Tags      int `yaml:"tags"`
	} `yaml:"max"`

	Min struct {
		TextChars int `yaml:"textChars"`
	} `yaml:"min"`

	Fetch struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`

	Verbose bool `yaml:"verbose"`
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config: %w", err)
	}
	return fc, nil
}

// ApplyFileConfig overlays file values onto cfg wherever cfg still carries
// the built-in default, so explicit flags and env vars keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := Default()

	if cfg.DataDir == def.DataDir && fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if cfg.ListenAddr == def.ListenAddr && fc.Addr != "" {
		cfg.ListenAddr = fc.Addr
	}
	if !cfg.EnrichEnabled && fc.LLM.Enable {
		cfg.EnrichEnabled = true
	}
	if cfg.LLMBaseURL == def.LLMBaseURL && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == def.LLMModel && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.EnrichTimeout == def.EnrichTimeout && fc.LLM.Timeout > 0 {
		cfg.EnrichTimeout = fc.LLM.Timeout
	}
	if cfg.MaxTextChars == def.MaxTextChars && fc.Max.TextChars > 0 {
		cfg.MaxTextChars = fc.Max.TextChars
	}
	if cfg.MaxTags == def.MaxTags && fc.Max.Tags > 0 {
		cfg.MaxTags = fc.Max.Tags
	}
	if cfg.MinTextChars == def.MinTextChars && fc.Min.TextChars > 0 {
		cfg.MinTextChars = fc.Min.TextChars
	}
	if cfg.FetchTimeout == def.FetchTimeout && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
