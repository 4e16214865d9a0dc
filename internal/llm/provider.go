package llm

import "fmt"

// Provider tags accepted by NewClient.
const (
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderKimi      = "kimi"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

const (
	deepSeekBaseURL = "https://api.deepseek.com"
	kimiBaseURL     = "https://api.moonshot.cn/v1"
	ollamaBaseURL   = "http://localhost:11434/v1"
)

type ProviderConfig struct {
	Provider  string `yaml:"provider"`
	APIKey    string `yaml:"api_key"`
	AuthToken string `yaml:"auth_token"` // OAuth token (Bearer auth)
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
}

// Providers lists the tags NewClient understands.
func Providers() []string {
	return []string{ProviderAnthropic, ProviderDeepSeek, ProviderKimi, ProviderOllama, ProviderOpenAI}
}

func NewClient(cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.AuthToken, cfg.Model), nil
	case ProviderOpenAI:
		return NewOpenAIClient(ProviderOpenAI, cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case ProviderDeepSeek:
		if cfg.Model == "" {
			cfg.Model = "deepseek-chat"
		}
		return NewOpenAIClient(ProviderDeepSeek, cfg.APIKey, cfg.Model, orDefault(cfg.BaseURL, deepSeekBaseURL)), nil
	case ProviderKimi:
		if cfg.Model == "" {
			cfg.Model = "moonshot-v1-8k"
		}
		return NewOpenAIClient(ProviderKimi, cfg.APIKey, cfg.Model, orDefault(cfg.BaseURL, kimiBaseURL)), nil
	case ProviderOllama:
		if cfg.Model == "" {
			cfg.Model = "llama3.1"
		}
		return NewOpenAIClient(ProviderOllama, "ollama", cfg.Model, orDefault(cfg.BaseURL, ollamaBaseURL)), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
