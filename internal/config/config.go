package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CorpusConfig lists the knowledge sources and how free text is chunked.
type CorpusConfig struct {
	Paths             []string `yaml:"paths"`
	SentencesPerChunk int      `yaml:"sentences_per_chunk"`
	OverlapSentences  int      `yaml:"overlap_sentences"`
}

// IndexConfig configures the TF-IDF vocabulary.
type IndexConfig struct {
	MinDF    int     `yaml:"min_df"`
	MaxDF    float64 `yaml:"max_df"`
	NgramMax int     `yaml:"ngram_max"`
}

// RetrievalConfig configures ranking and context assembly.
type RetrievalConfig struct {
	TopK             int     `yaml:"top_k"`
	MaxContextChars  int     `yaml:"max_context_chars"`
	LanguageBonus    float64 `yaml:"language_bonus"`
	SummarySentences int     `yaml:"summary_sentences"`
}

// PromptConfig points at the system prompt file.
type PromptConfig struct {
	SystemPath string `yaml:"system_path"`
}

// ModelConfig holds configuration for the OpenAI-compatible chat model.
type ModelConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries"`
}

// Timeout returns the per-request timeout.
func (m ModelConfig) Timeout() time.Duration { return time.Duration(m.TimeoutSecs) * time.Second }

// maxRetryDelay is the backoff cap of the model client.
const maxRetryDelay = 5 * time.Second

// AnswerBudget is the longest one answer can take: every attempt timing
// out, the capped backoff between attempts and a second for the offline
// fallback.
func (m ModelConfig) AnswerBudget() time.Duration {
	retries := max(m.MaxRetries, 0)
	return m.Timeout()*time.Duration(retries+1) + maxRetryDelay*time.Duration(retries) + time.Second
}

// CacheConfig configures the Redis answer cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	TTLSecs  int    `yaml:"ttl_secs"`
}

// TTL returns how long answers are cached.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSecs) * time.Second }

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSecs     int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs    int    `yaml:"write_timeout_secs"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
}

// WriteTimeout returns the HTTP write timeout, raised above the model
// answer budget so a slow or degraded reply can still be written.
func (c *AppConfig) WriteTimeout() time.Duration {
	configured := time.Duration(c.Server.WriteTimeoutSecs) * time.Second
	return max(configured, c.Model.AnswerBudget()+5*time.Second)
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Model     ModelConfig     `yaml:"model"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// WEBBOT_* environment variables override file values in both cases.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyConfigDefaults(cfg)
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/webbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/webbot/config.yaml and returns them.
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
	cfg, err := Load(userPath)
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

// Validate rejects values the index and retriever cannot work with.
func (c *AppConfig) Validate() error {
	var errs []error
	if len(c.Corpus.Paths) == 0 {
		errs = append(errs, errors.New("corpus.paths is empty"))
	}
	if c.Index.MinDF < 1 {
		errs = append(errs, fmt.Errorf("index.min_df must be >= 1, got %d", c.Index.MinDF))
	}
	if c.Index.MaxDF <= 0 || c.Index.MaxDF > 1 {
		errs = append(errs, fmt.Errorf("index.max_df must be in (0, 1], got %g", c.Index.MaxDF))
	}
	if c.Index.NgramMax < 1 {
		errs = append(errs, fmt.Errorf("index.ngram_max must be >= 1, got %d", c.Index.NgramMax))
	}
	if c.Retrieval.TopK < 1 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be >= 1, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.MaxContextChars < 1 {
		errs = append(errs, fmt.Errorf("retrieval.max_context_chars must be >= 1, got %d", c.Retrieval.MaxContextChars))
	}
	if c.Retrieval.LanguageBonus < 0 {
		errs = append(errs, fmt.Errorf("retrieval.language_bonus must be >= 0, got %g", c.Retrieval.LanguageBonus))
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model.temperature must be in [0, 2], got %g", c.Model.Temperature))
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		errs = append(errs, errors.New("cache.addr is required when the cache is enabled"))
	}
	return errors.Join(errs...)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "webbot", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Corpus:    CorpusConfig{Paths: []string{"knowledge_webbot.json"}, SentencesPerChunk: 5, OverlapSentences: 1},
		Index:     IndexConfig{MinDF: 1, MaxDF: 0.95, NgramMax: 2},
		Retrieval: RetrievalConfig{TopK: 5, MaxContextChars: 8000, LanguageBonus: 0.08, SummarySentences: 3},
		Prompt:    PromptConfig{SystemPath: "system_prompt_webbot.json"},
		Model: ModelConfig{
			BaseURL:     "https://api.openai.com/v1",
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "gpt-4o",
			Temperature: 0.2,
			TimeoutSecs: 30,
			MaxRetries:  2,
		},
		Cache:   CacheConfig{Addr: "localhost:6379", PoolSize: 10, TTLSecs: 3600},
		Server:  ServerConfig{Addr: ":8080", ReadTimeoutSecs: 10, WriteTimeoutSecs: 60, ShutdownTimeoutSecs: 10},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Corpus.SentencesPerChunk == 0 {
		cfg.Corpus.SentencesPerChunk = 5
	}
	if cfg.Model.BaseURL == "" {
		cfg.Model.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model.APIKeyEnv == "" {
		cfg.Model.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Model.Model == "" {
		cfg.Model.Model = "gpt-4o"
	}
	if cfg.Model.TimeoutSecs == 0 {
		cfg.Model.TimeoutSecs = 30
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

func applyEnvOverrides(cfg *AppConfig) error {
	if v := os.Getenv("WEBBOT_CORPUS_PATHS"); v != "" {
		cfg.Corpus.Paths = splitList(v)
	}
	if v := os.Getenv("WEBBOT_PROMPT_SYSTEM_PATH"); v != "" {
		cfg.Prompt.SystemPath = v
	}
	if v := os.Getenv("WEBBOT_MODEL"); v != "" {
		cfg.Model.Model = v
	}
	if v := os.Getenv("WEBBOT_MODEL_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := os.Getenv("WEBBOT_RETRIEVAL_TOP_K"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WEBBOT_RETRIEVAL_TOP_K: %w", err)
		}
		cfg.Retrieval.TopK = n
	}
	if v := os.Getenv("WEBBOT_CACHE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("WEBBOT_CACHE_ENABLED: %w", err)
		}
		cfg.Cache.Enabled = b
	}
	if v := os.Getenv("WEBBOT_REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("WEBBOT_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("WEBBOT_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("WEBBOT_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WEBBOT_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
