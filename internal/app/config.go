package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds runtime configuration. It is assembled once at startup
// (flags > environment > config file > defaults) and read-only afterwards.
type Config struct {
	// DataDir holds the JSON store and markdown exports.
	DataDir string

	// HTTP API
	ListenAddr string

	// LLM enrichment
	EnrichEnabled bool
	LLMBaseURL    string
	LLMModel      string
	LLMAPIKey     string
	// MaxTextChars truncates document text before prompting.
	MaxTextChars int
	// MinTextChars skips enrichment below this length.
	MinTextChars int
	// EnrichTimeout bounds a single enrichment call.
	EnrichTimeout time.Duration

	// MaxTags caps the merged tag list per article.
	MaxTags int

	// FetchTimeout bounds a single document download.
	FetchTimeout time.Duration

	Verbose bool
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:       filepath.Join(home, ".readlater"),
		ListenAddr:    "127.0.0.1:5123",
		LLMBaseURL:    "http://localhost:11434/v1",
		LLMModel:      "llama3.2",
		MaxTextChars:  6000,
		MinTextChars:  50,
		EnrichTimeout: 30 * time.Second,
		MaxTags:       6,
		FetchTimeout:  30 * time.Second,
	}
}

// StorePath is the JSON record file under the data dir.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "articles.json")
}

// ApplyEnv overlays environment variables onto cfg for fields the caller has
// not already set explicitly through flags.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("READLATER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("READLATER_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
}

// Validate rejects configurations that would only fail later, per call.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("config: data dir is required")
	}
	if cfg.EnrichEnabled {
		if strings.TrimSpace(cfg.LLMModel) == "" {
			return errors.New("config: llm model is required when enrichment is enabled (or set LLM_MODEL)")
		}
		if strings.TrimSpace(cfg.LLMBaseURL) == "" {
			return errors.New("config: llm base URL is required when enrichment is enabled (or set LLM_BASE_URL)")
		}
	}
	if cfg.MaxTextChars < 0 || cfg.MinTextChars < 0 || cfg.MaxTags < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
