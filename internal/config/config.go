package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/empowerguard/moodjournal/internal/inference"
	"github.com/empowerguard/moodjournal/internal/journal"
)

// RepoDirName is the per-project config directory found by walking upward.
const RepoDirName = ".moodjournal"

// Tone sources for ToneSource.
const (
	ToneSourceText = journal.SourceText
	ToneSourceFace = journal.SourceFace
)

// Environment variables holding provider API keys. Keys are never read from
// config files.
const (
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvGeminiKey = "GEMINI_API_KEY"
)

// Config holds application configuration.
type Config struct {
	// Provider selects the inference backend: openai, gemini or none.
	Provider string `json:"provider,omitempty"`

	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`

	// Temperature is the sampling temperature. Zero means "use default".
	Temperature float64 `json:"temperature,omitempty"`

	MaxOutputTokens int `json:"max_output_tokens,omitempty"`

	// InferenceTimeoutSeconds bounds a single provider call.
	InferenceTimeoutSeconds int `json:"inference_timeout_seconds,omitempty"`

	// RetryAttempts is the total number of provider calls per analysis.
	// 1 means no retry.
	RetryAttempts int `json:"retry_attempts,omitempty"`

	// ToneSource picks which tone is stored on an entry when a face log is
	// present: "text" keeps the inferred tone, "face" uses the last face tag.
	ToneSource string `json:"tone_source,omitempty"`

	// ContentMaxChars is the maximum character count for entry content.
	ContentMaxChars int `json:"content_max_chars,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export.
	// Paths outside <base>/exports require being in this list or AllowUnsafePaths=true.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits open database connections. 0 means sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes disables whole tool groups. Known types: "journal", "tone".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:                inference.ProviderOpenAI,
		Temperature:             0.7,
		MaxOutputTokens:         600,
		InferenceTimeoutSeconds: 60,
		RetryAttempts:           1,
		ToneSource:              ToneSourceText,
		ContentMaxChars:         20000,
		LogLevel:                "info",
		LogFormat:               "console",
	}
}

// DefaultBaseDir returns ~/.moodjournal, which holds config.json, the
// database and the exports directory.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, RepoDirName), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from the global base dir and the nearest
// .moodjournal/config.json above startDir. Repo values win for scalars;
// arrays are merged.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .moodjournal/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, RepoDirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero config (not defaults) when the file is missing.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	return &Config{
		Provider:                pickString(base.Provider, overlay.Provider),
		Model:                   pickString(base.Model, overlay.Model),
		Temperature:             pick(base.Temperature, overlay.Temperature),
		MaxOutputTokens:         pick(base.MaxOutputTokens, overlay.MaxOutputTokens),
		InferenceTimeoutSeconds: pick(base.InferenceTimeoutSeconds, overlay.InferenceTimeoutSeconds),
		RetryAttempts:           pick(base.RetryAttempts, overlay.RetryAttempts),
		ToneSource:              pickString(base.ToneSource, overlay.ToneSource),
		ContentMaxChars:         pick(base.ContentMaxChars, overlay.ContentMaxChars),
		LogLevel:                pickString(base.LogLevel, overlay.LogLevel),
		LogFormat:               pickString(base.LogFormat, overlay.LogFormat),
		DBMaxOpenConns:          pick(base.DBMaxOpenConns, overlay.DBMaxOpenConns),
		DBMaxIdleConns:          pick(base.DBMaxIdleConns, overlay.DBMaxIdleConns),

		// Booleans: overlay wins if true, else base
		AllowUnsafePaths: base.AllowUnsafePaths || overlay.AllowUnsafePaths,

		AllowedPaths:  mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths),
		DisabledTools: mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
		DisabledTypes: mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes),
	}
}

func pick[T int | float64](base, overlay T) T {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(base, overlay string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

// Validate rejects unknown enum values and negative limits.
func (c *Config) Validate() error {
	switch c.Provider {
	case inference.ProviderOpenAI, inference.ProviderGemini, inference.ProviderNone:
	default:
		return fmt.Errorf("provider must be one of openai, gemini, none (got %q)", c.Provider)
	}
	switch c.ToneSource {
	case ToneSourceText, ToneSourceFace:
	default:
		return fmt.Errorf("tone_source must be text or face (got %q)", c.ToneSource)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json (got %q)", c.LogFormat)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2 (got %v)", c.Temperature)
	}
	for name, v := range map[string]int{
		"max_output_tokens":         c.MaxOutputTokens,
		"inference_timeout_seconds": c.InferenceTimeoutSeconds,
		"retry_attempts":            c.RetryAttempts,
		"content_max_chars":         c.ContentMaxChars,
		"db_max_open_conns":         c.DBMaxOpenConns,
		"db_max_idle_conns":         c.DBMaxIdleConns,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative (got %d)", name, v)
		}
	}
	return nil
}

// InferenceOptions maps the config onto inference.Options, reading API keys
// from the environment through getenv (os.Getenv when nil).
func (c *Config) InferenceOptions(getenv func(string) string) inference.Options {
	if getenv == nil {
		getenv = os.Getenv
	}
	return inference.Options{
		Provider:        c.Provider,
		Model:           c.Model,
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
		Timeout:         time.Duration(c.InferenceTimeoutSeconds) * time.Second,
		RetryAttempts:   c.RetryAttempts,
		OpenAIKey:       getenv(EnvOpenAIKey),
		GeminiKey:       getenv(EnvGeminiKey),
	}
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
