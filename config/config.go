package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/chris/tablemate/internal/llm"
)

type Config struct {
	LLMProvider      string `yaml:"provider"` // anthropic, openai, deepseek, kimi, ollama
	AnthropicKey     string `yaml:"anthropic_api_key"`
	AnthropicToken   string `yaml:"anthropic_auth_token"` // OAuth token (Authorization: Bearer header)
	OpenAIKey        string `yaml:"openai_api_key"`
	DeepSeekKey      string `yaml:"deepseek_api_key"`
	KimiKey          string `yaml:"kimi_api_key"`
	LLMModel         string `yaml:"model"`
	OllamaBaseURL    string `yaml:"ollama_base_url"`
	EmbeddingModel   string `yaml:"embedding_model"`
	DatabasePath     string `yaml:"database_path"`
	DocumentsDir     string `yaml:"documents_dir"`
	MaxContextTokens int    `yaml:"max_context_tokens"`
	MaxToolRounds    int    `yaml:"max_tool_rounds"`
	Stream           bool   `yaml:"stream"`

	// Models registers named backends; when empty a single model is derived
	// from the provider fields above.
	Models []ModelConfig `yaml:"models"`
	Active string        `yaml:"active"`

	Retry   RetryConfig       `yaml:"retry"`
	Breaker llm.BreakerConfig `yaml:"breaker"`
	Search  SearchConfig      `yaml:"search"`
	Logger  LoggerConfig      `yaml:"logger"`
	Tracer  TracerConfig      `yaml:"tracer"`

	// ConfigFile is the YAML overlay that was read, if any.
	ConfigFile string `yaml:"-"`
}

type ModelConfig struct {
	Name               string `yaml:"name"`
	llm.ProviderConfig `yaml:",inline"`
}

// RetryConfig controls the request dispatcher. Zero delays mean immediate
// retry; zero RatePerSecond disables pacing.
type RetryConfig struct {
	Attempts      int           `yaml:"attempts"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	RatePerSecond float64       `yaml:"rate_per_second"`
}

type SearchConfig struct {
	TopK         int     `yaml:"top_k"`
	Threshold    float64 `yaml:"threshold"`
	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

func Defaults() *Config {
	return &Config{
		LLMProvider:      llm.ProviderAnthropic,
		OllamaBaseURL:    "http://localhost:11434/v1",
		DatabasePath:     "./data.db",
		MaxContextTokens: 100000,
		MaxToolRounds:    10,
		Retry:            RetryConfig{Attempts: 4},
		Search:           SearchConfig{TopK: 4, ChunkSize: 500, ChunkOverlap: 50},
		Logger:           LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
		Tracer:           TracerConfig{Exporter: "stdout"},
	}
}

// Load reads .env, then the YAML file named by TABLEMATE_CONFIG (if set and
// present), then lets environment variables override both.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore error if no .env

	cfg := Defaults()
	if path := os.Getenv("TABLEMATE_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

func applyEnv(c *Config) {
	c.LLMProvider = envOr("LLM_PROVIDER", c.LLMProvider)
	c.AnthropicKey = envOr("ANTHROPIC_API_KEY", c.AnthropicKey)
	c.AnthropicToken = envOr("ANTHROPIC_AUTH_TOKEN", c.AnthropicToken)
	c.OpenAIKey = envOr("OPENAI_API_KEY", c.OpenAIKey)
	c.DeepSeekKey = envOr("DEEPSEEK_API_KEY", c.DeepSeekKey)
	c.KimiKey = envOr("KIMI_API_KEY", c.KimiKey)
	c.LLMModel = envOr("LLM_MODEL", c.LLMModel)
	c.OllamaBaseURL = envOr("OLLAMA_BASE_URL", c.OllamaBaseURL)
	c.EmbeddingModel = envOr("EMBEDDING_MODEL", c.EmbeddingModel)
	c.DatabasePath = envOr("DATABASE_PATH", c.DatabasePath)
	c.DocumentsDir = envOr("DOCUMENTS_DIR", c.DocumentsDir)
	c.MaxContextTokens = envInt("MAX_CONTEXT_TOKENS", c.MaxContextTokens)
	c.MaxToolRounds = envInt("MAX_TOOL_ROUNDS", c.MaxToolRounds)
	c.Logger.Level = envOr("LOG_LEVEL", c.Logger.Level)
	if v := os.Getenv("LLM_STREAM"); v != "" {
		c.Stream, _ = strconv.ParseBool(v)
	}
}

// ModelConfigs returns the registered models. Without explicit entries the
// single provider configured through the environment is returned.
func (c *Config) ModelConfigs() []ModelConfig {
	if len(c.Models) > 0 {
		out := make([]ModelConfig, len(c.Models))
		for i, m := range c.Models {
			m.ProviderConfig = c.withCredentials(m.ProviderConfig)
			out[i] = m
		}
		return out
	}
	pc := c.withCredentials(llm.ProviderConfig{Provider: c.LLMProvider, Model: c.LLMModel})
	return []ModelConfig{{Name: c.LLMProvider, ProviderConfig: pc}}
}

// withCredentials fills whatever pc leaves empty from the provider's own
// environment settings. A key is never borrowed from another provider.
func (c *Config) withCredentials(pc llm.ProviderConfig) llm.ProviderConfig {
	if pc.APIKey == "" {
		pc.APIKey = c.apiKey(pc.Provider)
	}
	switch pc.Provider {
	case llm.ProviderAnthropic:
		if pc.AuthToken == "" {
			pc.AuthToken = c.AnthropicToken
		}
	case llm.ProviderOllama:
		if pc.BaseURL == "" {
			pc.BaseURL = c.OllamaBaseURL
		}
	}
	return pc
}

// ActiveModel is the name of the model selected at startup.
func (c *Config) ActiveModel() string {
	if c.Active != "" {
		return c.Active
	}
	models := c.ModelConfigs()
	return models[0].Name
}

func (c *Config) apiKey(provider string) string {
	switch provider {
	case llm.ProviderOpenAI:
		return c.OpenAIKey
	case llm.ProviderDeepSeek:
		return c.DeepSeekKey
	case llm.ProviderKimi:
		return c.KimiKey
	case llm.ProviderAnthropic:
		return c.AnthropicKey
	default:
		return ""
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
