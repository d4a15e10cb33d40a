// Package config loads HyperSeek configuration from YAML with
// environment variable overrides.
//
// Resolution order (later wins): defaults, config file, HYPERSEEK_* env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
)

// Config is the root configuration for all HyperSeek components.
type Config struct {
	// DataDir is the root directory for the document store, index
	// snapshots, and logs.
	DataDir string `yaml:"data_dir"`

	Log    LogConfig    `yaml:"log"`
	Index  IndexConfig  `yaml:"index"`
	Ollama OllamaConfig `yaml:"ollama"`
	Crawl  CrawlConfig  `yaml:"crawl"`
	RAG    RAGConfig    `yaml:"rag"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level     string `yaml:"level"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// IndexConfig holds lexical scoring parameters.
type IndexConfig struct {
	// K1 controls term frequency saturation.
	K1 float64 `yaml:"k1"`
	// B controls document length normalization.
	B float64 `yaml:"b"`
}

// OllamaConfig configures the embedding and LLM backends.
type OllamaConfig struct {
	Host           string        `yaml:"host"`
	EmbeddingModel string        `yaml:"embedding_model"`
	LLMModel       string        `yaml:"llm_model"`
	Timeout        time.Duration `yaml:"timeout"`
}

// CrawlConfig bounds crawl job execution.
type CrawlConfig struct {
	// MaxConcurrentJobs caps jobs running at once; submissions beyond
	// the cap queue until a worker frees up.
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs"`
	// RequestDelay is the fixed pause between consecutive requests to
	// the same source within one job.
	RequestDelay time.Duration `yaml:"request_delay"`
	// UserAgent is sent on every outbound request and matched against
	// robots.txt groups.
	UserAgent string `yaml:"user_agent"`
}

// RAGConfig bounds the recursive answer loop.
type RAGConfig struct {
	// MaxDepth is the maximum number of retrieval rounds.
	MaxDepth int `yaml:"max_depth"`
	// TopK is how many documents each retrieval round pulls.
	TopK int `yaml:"top_k"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".hyperseek"),
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Index: IndexConfig{
			K1: 1.2,
			B:  0.75,
		},
		Ollama: OllamaConfig{
			Host:           "http://localhost:11434",
			EmbeddingModel: "nomic-embed-text",
			LLMModel:       "llama3.1:8b",
			Timeout:        60 * time.Second,
		},
		Crawl: CrawlConfig{
			MaxConcurrentJobs: 4,
			RequestDelay:      time.Second,
			UserAgent:         "HyperSeekBot/1.0",
		},
		RAG: RAGConfig{
			MaxDepth: 2,
			TopK:     5,
		},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, seekerrors.New(seekerrors.ErrCodeConfigNotFound,
					fmt.Sprintf("cannot read config file %s", path), err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, seekerrors.New(seekerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("malformed config file %s", path), err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	if c.Index.K1 < 0 {
		return seekerrors.New(seekerrors.ErrCodeConfigInvalid, "index.k1 must be >= 0", nil)
	}
	if c.Index.B < 0 || c.Index.B > 1 {
		return seekerrors.New(seekerrors.ErrCodeConfigInvalid, "index.b must be in [0, 1]", nil)
	}
	if c.Crawl.MaxConcurrentJobs < 1 {
		return seekerrors.New(seekerrors.ErrCodeConfigInvalid, "crawl.max_concurrent_jobs must be >= 1", nil)
	}
	if c.RAG.MaxDepth < 1 {
		return seekerrors.New(seekerrors.ErrCodeConfigInvalid, "rag.max_depth must be >= 1", nil)
	}
	return nil
}

// LogPath returns the log file location under the data directory.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "logs", "hyperseek.log")
}

// DBPath returns the document store location under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "hyperseek.db")
}

// applyEnv overrides config fields from HYPERSEEK_* environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.DataDir, "HYPERSEEK_DATA_DIR")
	setString(&cfg.Log.Level, "HYPERSEEK_LOG_LEVEL")
	setFloat(&cfg.Index.K1, "HYPERSEEK_BM25_K1")
	setFloat(&cfg.Index.B, "HYPERSEEK_BM25_B")
	setString(&cfg.Ollama.Host, "HYPERSEEK_OLLAMA_HOST")
	setString(&cfg.Ollama.EmbeddingModel, "HYPERSEEK_EMBEDDING_MODEL")
	setString(&cfg.Ollama.LLMModel, "HYPERSEEK_LLM_MODEL")
	setInt(&cfg.Crawl.MaxConcurrentJobs, "HYPERSEEK_MAX_CONCURRENT_JOBS")
	setDuration(&cfg.Crawl.RequestDelay, "HYPERSEEK_CRAWL_DELAY")
	setInt(&cfg.RAG.MaxDepth, "HYPERSEEK_RAG_MAX_DEPTH")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
