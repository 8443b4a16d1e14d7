package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the fraudshield API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Admin     AdminConfig     `yaml:"admin"`
	Storage   StorageConfig   `yaml:"storage"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Scan      ScanConfig      `yaml:"scan"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// AdminConfig holds the administrative reset settings.
type AdminConfig struct {
	ResetKey string `yaml:"reset_key"`
}

// StorageConfig holds the on-disk layout of the fingerprint and vector state.
type StorageConfig struct {
	DataDir        string `yaml:"data_dir"`
	ExactFile      string `yaml:"exact_file"`
	PerceptualFile string `yaml:"perceptual_file"`
	IndexFile      string `yaml:"index_file"`
}

// ExactPath returns the absolute path of the exact-hash set file.
func (s StorageConfig) ExactPath() string { return filepath.Join(s.DataDir, s.ExactFile) }

// PerceptualPath returns the absolute path of the perceptual-hash set file.
func (s StorageConfig) PerceptualPath() string { return filepath.Join(s.DataDir, s.PerceptualFile) }

// IndexPath returns the absolute path of the vector index file.
func (s StorageConfig) IndexPath() string { return filepath.Join(s.DataDir, s.IndexFile) }

// DedupConfig holds duplicate-detection thresholds.
type DedupConfig struct {
	SemanticThreshold float64 `yaml:"semantic_threshold"`
	MinTextLen        int     `yaml:"min_text_len"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// CacheConfig holds the optional embedding cache backend. Empty addrs disable
// caching.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// ScanConfig holds upload validation limits.
type ScanConfig struct {
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxPDFPages       int      `yaml:"max_pdf_pages"`
}

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.ExactFile == "" {
		c.Storage.ExactFile = "sha256.json"
	}
	if c.Storage.PerceptualFile == "" {
		c.Storage.PerceptualFile = "hash.json"
	}
	if c.Storage.IndexFile == "" {
		c.Storage.IndexFile = "docs.index"
	}
	if c.Dedup.SemanticThreshold <= 0 {
		c.Dedup.SemanticThreshold = 0.85
	}
	if c.Dedup.MinTextLen <= 0 {
		c.Dedup.MinTextLen = 20
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Scan.MaxUploadBytes <= 0 {
		c.Scan.MaxUploadBytes = 10 << 20
	}
	if len(c.Scan.AllowedExtensions) == 0 {
		c.Scan.AllowedExtensions = []string{".pdf", ".docx", ".doc", ".jpg", ".jpeg", ".png"}
	}
	if c.Scan.MaxPDFPages <= 0 {
		c.Scan.MaxPDFPages = 5
	}

	// Unset ${VAR} placeholders leave empty strings behind.
	addrs := c.Cache.Addrs[:0]
	for _, a := range c.Cache.Addrs {
		if a != "" {
			addrs = append(addrs, a)
		}
	}
	c.Cache.Addrs = addrs

	// A single env var may carry a comma-separated origin list.
	c.HTTP.CORSOrigins = splitOrigins(c.HTTP.CORSOrigins)
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{
			"https://finance-ai-project-eight.vercel.app",
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}
}

func splitOrigins(entries []string) []string {
	var origins []string
	for _, entry := range entries {
		for _, origin := range strings.Split(entry, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}
	return origins
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Admin.ResetKey == "" {
		return fmt.Errorf("admin.reset_key is required")
	}
	if c.Dedup.SemanticThreshold > 1 {
		return fmt.Errorf("dedup.semantic_threshold must be in (0, 1], got %v", c.Dedup.SemanticThreshold)
	}
	for _, ext := range c.Scan.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("scan.allowed_extensions entries must start with a dot, got %q", ext)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
