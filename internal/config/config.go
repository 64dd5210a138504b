package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"legalbot/internal/domain"
)

// CorpusConfig locates the legal provisions table.
type CorpusConfig struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	Dimensions  int    `yaml:"dimensions,omitempty"`
}

// CacheConfig enables the persistent embedding cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	BatchSize int                   `yaml:"batch_size"`
	Workers   int                   `yaml:"workers"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Cache     CacheConfig           `yaml:"cache"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig tunes ranking. A nil Threshold means the default.
type RetrievalConfig struct {
	Threshold *float64 `yaml:"threshold,omitempty"`
	TopK      int      `yaml:"top_k"`
}

// SynthesisConfig tunes response rendering. Seed 0 means nondeterministic.
type SynthesisConfig struct {
	CurrencySymbol string `yaml:"currency_symbol"`
	Seed           uint64 `yaml:"seed"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_secs"`
	WriteTimeoutSec int      `yaml:"write_timeout_secs"`
	ShutdownSec     int      `yaml:"shutdown_timeout_secs"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus      CorpusConfig      `yaml:"corpus"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Synthesis   SynthesisConfig   `yaml:"synthesis"`
	HTTP        HTTPConfig        `yaml:"http"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finish(defaultConfig())
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return finish(&cfg)
}

func finish(cfg *AppConfig) (*AppConfig, error) {
	cfg.ApplyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/legalbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/legalbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := finish(defaultConfig())
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "legalbot", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	threshold := domain.DefaultThreshold
	cfg := &AppConfig{
		Corpus:      CorpusConfig{Path: "legal_database.csv", Delimiter: ","},
		Embedder:    EmbedderConfig{Type: "tfidf", BatchSize: 32, Workers: 4},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retrieval:   RetrievalConfig{Threshold: &threshold, TopK: domain.DefaultTopK},
		Synthesis:   SynthesisConfig{CurrencySymbol: "₹"},
		HTTP:        HTTPConfig{Port: 5001, AllowedOrigins: []string{"*"}},
		Logging:     LoggingConfig{Env: "local", Level: "info"},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values.
func (c *AppConfig) ApplyDefaults() {
	if c.Corpus.Path == "" {
		c.Corpus.Path = "legal_database.csv"
	}
	if c.Corpus.Delimiter == "" {
		c.Corpus.Delimiter = ","
	}
	if c.Embedder.Type == "" {
		c.Embedder.Type = "tfidf"
	}
	if c.Embedder.BatchSize <= 0 {
		c.Embedder.BatchSize = 32
	}
	if c.Embedder.Workers <= 0 {
		c.Embedder.Workers = 4
	}
	if c.Embedder.Type == "openai" {
		if c.Embedder.OpenAI == nil {
			c.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if c.Embedder.OpenAI.BaseURL == "" {
			c.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if c.Embedder.OpenAI.APIKeyEnv == "" {
			c.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if c.Embedder.OpenAI.Model == "" {
			c.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if c.Embedder.OpenAI.TimeoutSecs == 0 {
			c.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if c.Embedder.Cache.Enabled && c.Embedder.Cache.Path == "" {
		c.Embedder.Cache.Path = filepath.Join(".legalbot", "embcache")
	}
	if c.VectorStore.Type == "" {
		c.VectorStore.Type = "memory"
	}
	if q := c.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "legal_records"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if c.Retrieval.Threshold == nil {
		t := domain.DefaultThreshold
		c.Retrieval.Threshold = &t
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = domain.DefaultTopK
	}
	if c.Synthesis.CurrencySymbol == "" {
		c.Synthesis.CurrencySymbol = "₹"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5001
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// applyEnv lets PORT override http.port.
func (c *AppConfig) applyEnv() error {
	v := os.Getenv("PORT")
	if v == "" {
		return nil
	}
	port, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("PORT must be an integer, got %q", v)
	}
	c.HTTP.Port = port
	return nil
}

// Validate checks the configuration for correctness.
func (c *AppConfig) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len([]rune(c.Corpus.Delimiter)) != 1 {
		return fmt.Errorf("corpus.delimiter must be a single character, got %q", c.Corpus.Delimiter)
	}
	switch c.Embedder.Type {
	case "tfidf", "openai":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			return errors.New("vector_store.qdrant.url is required for the qdrant store")
		}
	default:
		return fmt.Errorf("unknown vector store type %q", c.VectorStore.Type)
	}
	if t := *c.Retrieval.Threshold; t < -1 || t > 1 {
		return fmt.Errorf("retrieval.threshold must be within [-1, 1], got %v", t)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be at least 1, got %d", c.Retrieval.TopK)
	}
	return nil
}

// RetrievalParams returns the ranking parameters.
func (c *AppConfig) RetrievalParams() domain.RetrievalConfig {
	return domain.RetrievalConfig{Threshold: *c.Retrieval.Threshold, TopK: c.Retrieval.TopK}
}

// DelimiterRune returns the corpus field separator.
func (c *AppConfig) DelimiterRune() rune {
	return []rune(c.Corpus.Delimiter)[0]
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = def
		}
		return []byte(val)
	})
}
