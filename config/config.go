package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the studio needs at startup.
type Config struct {
	ServerAddr string        `yaml:"server_addr"`
	LogMode    string        `yaml:"log_mode"`
	LLM        LLMConfig     `yaml:"llm"`
	Data       DataConfig    `yaml:"data"`
	History    HistoryConfig `yaml:"history"`
	Auth       AuthConfig    `yaml:"auth"`
	Publish    PublishConfig `yaml:"publish"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, deepseek, gemini, showcase
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"` // per attempt
}

// DataConfig points at the on-disk inputs.
type DataConfig struct {
	DatasetPath      string `yaml:"dataset_path"`
	DummyDatasetPath string `yaml:"dummy_dataset_path"`
	ContextsDir      string `yaml:"contexts_dir"`
	PromptsDir       string `yaml:"prompts_dir"`
	OutputsDir       string `yaml:"outputs_dir"`
	WatchCatalogs    bool   `yaml:"watch_catalogs"`
}

// HistoryConfig selects the result log backend. DSN is a directory for "dir",
// a file path for "sqlite", a connection URL for "postgres" and an address for "redis".
type HistoryConfig struct {
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
	Prefix  string `yaml:"prefix"`
}

// AuthConfig enables the dashboard password when Password is set.
type AuthConfig struct {
	Password  string `yaml:"password"`
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
}

// PublishConfig controls where rendered digests go besides the outputs directory.
type PublishConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Author     string `yaml:"author"`
}

const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
	ProviderShowcase = "showcase"

	DefaultModel       = "gpt-4"
	DefaultGeminiModel = "gemini-2.5-flash"
)

var historyBackends = map[string]bool{"memory": true, "dir": true, "sqlite": true, "postgres": true, "redis": true}

func Default() Config {
	return Config{
		ServerAddr: ":8000",
		LogMode:    "dev",
		LLM: LLMConfig{
			Model:   DefaultModel,
			Timeout: "60s",
		},
		Data: DataConfig{
			DatasetPath:      "data_api/dataset.json",
			DummyDatasetPath: "data_api/dummy_dataset.json",
			ContextsDir:      "data_api/contexts",
			PromptsDir:       "data_api/prompts",
			OutputsDir:       "data_api/outputs",
			WatchCatalogs:    true,
		},
		History: HistoryConfig{
			Backend: "memory",
			Prefix:  "curator:history",
		},
		Auth: AuthConfig{
			TokenTTL: "12h",
		},
		Publish: PublishConfig{
			Author: "Tweet Curator",
		},
	}
}

// LoadEnvFiles loads .env style files into the process environment. Missing files are skipped.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads a YAML config file on top of Default and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv() {
	setString(&c.ServerAddr, "SERVER_ADDR")
	setString(&c.LogMode, "LOG_MODE")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.History.Backend, "HISTORY_BACKEND")
	setString(&c.History.DSN, "HISTORY_DSN")
	setString(&c.Auth.Password, "DASHBOARD_PASSWORD")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Publish.WebhookURL, "PUBLISH_WEBHOOK_URL")

	if c.LLM.APIKey != "" {
		return
	}
	openaiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	geminiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	switch strings.ToLower(c.LLM.Provider) {
	case ProviderGemini:
		c.LLM.APIKey = geminiKey
	case ProviderOpenAI, ProviderDeepSeek:
		c.LLM.APIKey = openaiKey
	case "":
		if openaiKey != "" {
			c.LLM.Provider, c.LLM.APIKey = ProviderOpenAI, openaiKey
		} else if geminiKey != "" {
			c.LLM.Provider, c.LLM.APIKey = ProviderGemini, geminiKey
		}
	}
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" || (c.LLM.Provider != ProviderShowcase && c.LLM.APIKey == "") {
		c.LLM.Provider = ProviderShowcase
	}
	if c.LLM.Provider == ProviderGemini && (c.LLM.Model == "" || c.LLM.Model == DefaultModel) {
		c.LLM.Model = DefaultGeminiModel
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	c.History.Backend = strings.ToLower(strings.TrimSpace(c.History.Backend))
	if c.History.Backend == "" {
		c.History.Backend = "memory"
	}
}

func (c Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderShowcase:
	case ProviderDeepSeek:
		// DeepSeek speaks the OpenAI protocol but has no default endpoint.
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	if _, err := parseDuration(c.LLM.Timeout, "llm.timeout"); err != nil {
		return err
	}
	if !historyBackends[c.History.Backend] {
		return fmt.Errorf("history backend %s not supported", c.History.Backend)
	}
	if c.History.Backend != "memory" && c.History.DSN == "" {
		return fmt.Errorf("history backend %s requires history.dsn", c.History.Backend)
	}
	if c.Auth.Password != "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.password is set but auth.jwt_secret is empty")
	}
	if _, err := parseDuration(c.Auth.TokenTTL, "auth.token_ttl"); err != nil {
		return err
	}
	if u := c.Publish.WebhookURL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("publish.webhook_url must be an http(s) URL")
	}
	return nil
}

// AttemptTimeout is the per-attempt completion timeout.
func (c LLMConfig) AttemptTimeout() time.Duration {
	d, _ := parseDuration(c.Timeout, "")
	if d <= 0 {
		return 60 * time.Second
	}
	return d
}

func (c AuthConfig) TTL() time.Duration {
	d, _ := parseDuration(c.TokenTTL, "")
	if d <= 0 {
		return 12 * time.Hour
	}
	return d
}

func parseDuration(v, field string) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	return d, nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
