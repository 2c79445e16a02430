package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Agent     AgentConfig     `json:"agent"`
	Providers ProvidersConfig `json:"providers"`
	Chains    ChainsConfig    `json:"chains"`
	Rooms     RoomsConfig     `json:"rooms"`
	Tools     ToolsConfig     `json:"tools"`
	Goals     GoalsConfig     `json:"goals"`
	Flags     FlagsConfig     `json:"flags"`
	Log       LogConfig       `json:"log"`
}

type ServerConfig struct {
	Host string `json:"host" env:"AIKATA_SERVER_HOST"`
	Port int    `json:"port" env:"AIKATA_SERVER_PORT"`
}

type AgentConfig struct {
	Provider    string  `json:"provider" env:"AIKATA_AGENT_PROVIDER"`
	Model       string  `json:"model" env:"AIKATA_AGENT_MODEL"`
	MaxTokens   int     `json:"max_tokens" env:"AIKATA_AGENT_MAX_TOKENS"`
	Temperature float64 `json:"temperature" env:"AIKATA_AGENT_TEMPERATURE"`
}

type ProvidersConfig struct {
	OpenAI ProviderConfig `json:"openai" envPrefix:"AIKATA_PROVIDERS_OPENAI_"`
	Claude ProviderConfig `json:"claude" envPrefix:"AIKATA_PROVIDERS_CLAUDE_"`
	Ollama ProviderConfig `json:"ollama" envPrefix:"AIKATA_PROVIDERS_OLLAMA_"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key" env:"API_KEY"`
	APIBase string `json:"api_base" env:"API_BASE"`
	Proxy   string `json:"proxy,omitempty" env:"PROXY"`
}

// ChainsConfig selects the secondary model used for plan and summary generation.
type ChainsConfig struct {
	Provider     string `json:"provider" env:"AIKATA_CHAINS_PROVIDER"`
	PlanModel    string `json:"plan_model" env:"AIKATA_CHAINS_PLAN_MODEL"`
	SummaryModel string `json:"summary_model" env:"AIKATA_CHAINS_SUMMARY_MODEL"`
	MaxTokens    int    `json:"max_tokens" env:"AIKATA_CHAINS_MAX_TOKENS"`
}

type RoomsConfig struct {
	TimeoutMinutes int    `json:"timeout_minutes" env:"AIKATA_ROOMS_TIMEOUT_MINUTES"`
	CleanupCron    string `json:"cleanup_cron" env:"AIKATA_ROOMS_CLEANUP_CRON"`
}

type ToolsConfig struct {
	WaitMaxMinutes float64 `json:"wait_max_minutes" env:"AIKATA_TOOLS_WAIT_MAX_MINUTES"`
}

type GoalsConfig struct {
	Goals      []string `json:"goals" env:"AIKATA_GOALS_GOALS"`
	CommonRule string   `json:"common_rule" env:"AIKATA_GOALS_COMMON_RULE"`
}

type FlagsConfig struct {
	Names []string `json:"names" env:"AIKATA_FLAGS_NAMES"`
}

type LogConfig struct {
	Level string `json:"level" env:"AIKATA_LOG_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 18800,
		},
		Agent: AgentConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   4096,
			Temperature: 0,
		},
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{APIBase: "https://api.openai.com/v1"},
			Claude: ProviderConfig{},
			Ollama: ProviderConfig{APIBase: "http://127.0.0.1:11434/v1"},
		},
		Chains: ChainsConfig{
			Provider:     "openai",
			PlanModel:    "gpt-4o-mini",
			SummaryModel: "gpt-4o-mini",
			MaxTokens:    2048,
		},
		Rooms: RoomsConfig{
			TimeoutMinutes: 30,
			CleanupCron:    "*/5 * * * *",
		},
		Tools: ToolsConfig{
			WaitMaxMinutes: 60,
		},
		Goals: GoalsConfig{
			Goals:      []string{},
			CommonRule: "",
		},
		Flags: FlagsConfig{
			Names: []string{"finish", "go_next", "plan_action", "reply_message", "na"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Rooms.TimeoutMinutes <= 0 {
		return fmt.Errorf("rooms timeout must be positive: %d", c.Rooms.TimeoutMinutes)
	}
	if c.Tools.WaitMaxMinutes <= 0 {
		return fmt.Errorf("wait max minutes must be positive: %g", c.Tools.WaitMaxMinutes)
	}
	if len(c.Flags.Names) == 0 {
		return fmt.Errorf("flags names must not be empty")
	}
	return nil
}

// Provider returns the provider section for a name, defaulting to openai.
func (c *Config) Provider(name string) ProviderConfig {
	switch name {
	case "claude":
		return c.Providers.Claude
	case "ollama":
		return c.Providers.Ollama
	default:
		return c.Providers.OpenAI
	}
}
