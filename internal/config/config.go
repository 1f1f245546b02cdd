// Package config provides configuration loading and structs for the votesathi server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/votesathi/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Generation GenerationConfig `yaml:"generation"`
	Vision     VisionConfig     `yaml:"vision"`
	Speech     SpeechConfig     `yaml:"speech"`
	Booths     BoothsConfig     `yaml:"booths"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Synthesis  SynthesisConfig  `yaml:"synthesis"`
	Assistant  AssistantConfig  `yaml:"assistant"`
}

// ServerConfig holds HTTP server settings and upload limits.
type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	MaxImageBytes         int64  `yaml:"max_image_bytes"`
	MaxAudioBytes         int64  `yaml:"max_audio_bytes"`
	MaxImagePixels        int    `yaml:"max_image_pixels"`
}

// StorageConfig selects the persistence backend for session memory, consent, and audit.
type StorageConfig struct {
	Backend      string `yaml:"backend"` // memory, sqlite, redis
	DatabasePath string `yaml:"database_path"`
}

// RedisConfig holds connection settings shared by the Redis storage and cache backends.
type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Backend    string `yaml:"backend"` // memory, redis
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxEntries int    `yaml:"max_entries"`
}

// GenerationConfig holds language model settings used for answers and both vision passes.
type GenerationConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TopP           float64 `yaml:"top_p"` // 0 leaves it unset; some models reject it alongside temperature
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// VisionConfig holds document extraction settings.
type VisionConfig struct {
	Model                 string `yaml:"model"` // empty uses generation.model
	ExtractMaxTokens      int    `yaml:"extract_max_tokens"`
	ExplainMaxTokens      int    `yaml:"explain_max_tokens"`
	ExtractTimeoutSeconds int    `yaml:"extract_timeout_seconds"`
	ExplainTimeoutSeconds int    `yaml:"explain_timeout_seconds"`
}

// SpeechConfig holds speech-to-text service settings.
type SpeechConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// BoothsConfig holds booth dataset and ranking settings.
type BoothsConfig struct {
	DatasetPath  string                `yaml:"dataset_path"` // empty uses the built-in dataset
	DefaultLimit int                   `yaml:"default_limit"`
	Ranking      ranking.RankingConfig `yaml:"ranking"`
}

// KnowledgeConfig holds knowledge base indexing and retrieval settings.
type KnowledgeConfig struct {
	IndexPath    string   `yaml:"index_path"` // empty keeps the index in memory
	Directories  []string `yaml:"directories"`
	Extensions   []string `yaml:"extensions"`
	Watch        bool     `yaml:"watch"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	TopK         int      `yaml:"top_k"`
}

// SynthesisConfig holds the escalation and caching thresholds.
type SynthesisConfig struct {
	EscalationThreshold     float64 `yaml:"escalation_threshold"`
	CacheMinConfidence      float64 `yaml:"cache_min_confidence"`
	SupplementMinConfidence float64 `yaml:"supplement_min_confidence"`
	FallbackConfidence      float64 `yaml:"fallback_confidence"`
}

// AssistantConfig holds request orchestration settings.
type AssistantConfig struct {
	MemoryTurns     int     `yaml:"memory_turns"`
	BoothConfidence float64 `yaml:"booth_confidence"`
	AuditEnabled    *bool   `yaml:"audit_enabled"`
}

// Load reads and parses the config file at path, applies defaults and
// environment overrides, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	ApplyEnv(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Booths.DatasetPath != "" {
		cfg.Booths.DatasetPath = expandPath(cfg.Booths.DatasetPath, configDir)
	}
	if cfg.Knowledge.IndexPath != "" {
		cfg.Knowledge.IndexPath = expandPath(cfg.Knowledge.IndexPath, configDir)
	}
	for i := range cfg.Knowledge.Directories {
		cfg.Knowledge.Directories[i] = expandPath(cfg.Knowledge.Directories[i], configDir)
	}

	return &cfg, nil
}

// ApplyEnv overrides secrets and endpoints from the environment.
func ApplyEnv(cfg *Config) {
	envOverride(&cfg.Generation.APIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.Generation.BaseURL, "ANTHROPIC_BASE_URL")
	envOverride(&cfg.Speech.APIKey, "OPENAI_API_KEY")
	envOverride(&cfg.Speech.BaseURL, "VOTESATHI_SPEECH_URL")
	envOverride(&cfg.Redis.Address, "REDIS_ADDRESS")
	envOverride(&cfg.Redis.Password, "REDIS_PASSWORD")
	envOverride(&cfg.Storage.Backend, "VOTESATHI_STORAGE_BACKEND")
	envOverride(&cfg.Cache.Backend, "VOTESATHI_CACHE_BACKEND")
	envOverrideInt(&cfg.Server.Port, "VOTESATHI_PORT")
}

func envOverride(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*target = n
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
