package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the gateway.
// Zero values mean "unspecified" and are filled from Defaults.
type Config struct {
	Addr               string   `json:"addr" yaml:"addr" toml:"addr"`
	OllamaURL          string   `json:"ollama_url" yaml:"ollama_url" toml:"ollama_url"`
	DefaultModel       string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	MultimodalModels   []string `json:"multimodal_models" yaml:"multimodal_models" toml:"multimodal_models"`
	StrictMultimodal   bool     `json:"strict_multimodal" yaml:"strict_multimodal" toml:"strict_multimodal"`
	StagingDir         string   `json:"staging_dir" yaml:"staging_dir" toml:"staging_dir"`
	MaxUploadMB        int      `json:"max_upload_mb" yaml:"max_upload_mb" toml:"max_upload_mb"`
	GenerateTimeoutSec int      `json:"generate_timeout_sec" yaml:"generate_timeout_sec" toml:"generate_timeout_sec"`
	ListTimeoutSec     int      `json:"list_timeout_sec" yaml:"list_timeout_sec" toml:"list_timeout_sec"`
	PullTimeoutSec     int      `json:"pull_timeout_sec" yaml:"pull_timeout_sec" toml:"pull_timeout_sec"`
	ConnectTimeoutSec  int      `json:"connect_timeout_sec" yaml:"connect_timeout_sec" toml:"connect_timeout_sec"`
	MaxBodyBytes       int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	StaticDir          string   `json:"static_dir" yaml:"static_dir" toml:"static_dir"`
	CORSEnabled        *bool    `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins        []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	LogLevel           string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat          string   `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Defaults returns the built-in configuration: 15s generate, 10s list and
// 30s pull timeouts against a local Ollama.
func Defaults() Config {
	cors := true
	return Config{
		Addr:               ":8000",
		OllamaURL:          "http://localhost:11434",
		DefaultModel:       "llama3",
		MultimodalModels:   []string{"llava", "bakllava", "llava-llama3", "llama3.2-vision", "moondream"},
		StagingDir:         filepath.Join(os.TempDir(), "llmgate"),
		MaxUploadMB:        20,
		GenerateTimeoutSec: 15,
		ListTimeoutSec:     10,
		PullTimeoutSec:     30,
		ConnectTimeoutSec:  5,
		MaxBodyBytes:       1 << 20,
		StaticDir:          "static",
		CORSEnabled:        &cors,
		CORSOrigins:        []string{"*"},
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge overlays the non-zero fields of o onto c and returns the result.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.OllamaURL != "" {
		c.OllamaURL = o.OllamaURL
	}
	if o.DefaultModel != "" {
		c.DefaultModel = o.DefaultModel
	}
	if o.MultimodalModels != nil {
		c.MultimodalModels = append([]string(nil), o.MultimodalModels...)
	}
	if o.StrictMultimodal {
		c.StrictMultimodal = true
	}
	if o.StagingDir != "" {
		c.StagingDir = o.StagingDir
	}
	if o.MaxUploadMB > 0 {
		c.MaxUploadMB = o.MaxUploadMB
	}
	if o.GenerateTimeoutSec > 0 {
		c.GenerateTimeoutSec = o.GenerateTimeoutSec
	}
	if o.ListTimeoutSec > 0 {
		c.ListTimeoutSec = o.ListTimeoutSec
	}
	if o.PullTimeoutSec > 0 {
		c.PullTimeoutSec = o.PullTimeoutSec
	}
	if o.ConnectTimeoutSec > 0 {
		c.ConnectTimeoutSec = o.ConnectTimeoutSec
	}
	if o.MaxBodyBytes > 0 {
		c.MaxBodyBytes = o.MaxBodyBytes
	}
	if o.StaticDir != "" {
		c.StaticDir = o.StaticDir
	}
	if o.CORSEnabled != nil {
		v := *o.CORSEnabled
		c.CORSEnabled = &v
	}
	if o.CORSOrigins != nil {
		c.CORSOrigins = append([]string(nil), o.CORSOrigins...)
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	return c
}

// FromEnv builds a partial Config from LLMGATE_* variables, suitable for Merge.
// Malformed numeric or boolean values are reported rather than ignored.
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	var cfg Config
	cfg.Addr = getenv("LLMGATE_ADDR")
	cfg.OllamaURL = getenv("LLMGATE_OLLAMA_URL")
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = getenv("OLLAMA_HOST")
	}
	cfg.DefaultModel = getenv("LLMGATE_DEFAULT_MODEL")
	if v := getenv("LLMGATE_MULTIMODAL_MODELS"); v != "" {
		cfg.MultimodalModels = SplitCSV(v)
	}
	cfg.StagingDir = getenv("LLMGATE_STAGING_DIR")
	cfg.StaticDir = getenv("LLMGATE_STATIC_DIR")
	cfg.LogLevel = getenv("LLMGATE_LOG_LEVEL")
	cfg.LogFormat = getenv("LLMGATE_LOG_FORMAT")
	if v := getenv("LLMGATE_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = SplitCSV(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"LLMGATE_MAX_UPLOAD_MB", &cfg.MaxUploadMB},
		{"LLMGATE_GENERATE_TIMEOUT_SEC", &cfg.GenerateTimeoutSec},
		{"LLMGATE_LIST_TIMEOUT_SEC", &cfg.ListTimeoutSec},
		{"LLMGATE_PULL_TIMEOUT_SEC", &cfg.PullTimeoutSec},
		{"LLMGATE_CONNECT_TIMEOUT_SEC", &cfg.ConnectTimeoutSec},
	}
	for _, it := range ints {
		raw := strings.TrimSpace(getenv(it.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s value %q: %w", it.key, raw, err)
		}
		*it.dst = n
	}
	if raw := strings.TrimSpace(getenv("LLMGATE_MAX_BODY_BYTES")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLMGATE_MAX_BODY_BYTES value %q: %w", raw, err)
		}
		cfg.MaxBodyBytes = n
	}
	if raw := strings.TrimSpace(getenv("LLMGATE_STRICT_MULTIMODAL")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLMGATE_STRICT_MULTIMODAL value %q: %w", raw, err)
		}
		cfg.StrictMultimodal = b
	}
	if raw := strings.TrimSpace(getenv("LLMGATE_CORS_ENABLED")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLMGATE_CORS_ENABLED value %q: %w", raw, err)
		}
		cfg.CORSEnabled = &b
	}
	return cfg, nil
}

// Validate reports settings that cannot work at runtime.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OllamaURL) == "" {
		return fmt.Errorf("ollama_url is required")
	}
	if strings.TrimSpace(c.DefaultModel) == "" {
		return fmt.Errorf("default_model is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// CORS reports whether CORS handling is on.
func (c Config) CORS() bool { return c.CORSEnabled != nil && *c.CORSEnabled }

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
