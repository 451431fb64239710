package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Upload  UploadConfig  `koanf:"upload"`
	Vault   VaultConfig   `koanf:"vault"`
	Whisper WhisperConfig `koanf:"whisper"`
	LLM     LLMConfig     `koanf:"llm"`
	Review  ReviewConfig  `koanf:"review"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

type UploadConfig struct {
	Dir      string `koanf:"dir"`
	MaxBytes int64  `koanf:"max_bytes"`
}

type VaultConfig struct {
	Path            string `koanf:"path"`
	Name            string `koanf:"name"`
	MeetingsFolder  string `koanf:"meetings_folder"`
	InboxFolder     string `koanf:"inbox_folder"`
	DailyFolder     string `koanf:"daily_folder"`
	AreasFolder     string `koanf:"areas_folder"`
	ProjectsFolder  string `koanf:"projects_folder"`
	ResourcesFolder string `koanf:"resources_folder"`
}

type WhisperConfig struct {
	Model       string `koanf:"model"`
	Python      string `koanf:"python"`
	HFToken     string `koanf:"hf_token"`
	DomainVocab string `koanf:"domain_vocab"`
}

type LLMConfig struct {
	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model"`
	OpenAIAPIKey string `koanf:"openai_api_key"`
	OpenAIModel  string `koanf:"openai_model"`
}

type ReviewConfig struct {
	PollInterval string `koanf:"poll_interval"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads config from TOML file (if provided) then overlays env vars.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	// 2. Load TOML config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load env vars: WO_VAULT_PATH -> vault.path
	// Only set env vars that have non-empty values to avoid overriding TOML config.
	if err := k.Load(env.ProviderWithValue("WO_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		mapped := strings.Replace(
			strings.ToLower(strings.TrimPrefix(key, "WO_")),
			"_", ".", 1,
		)
		return mapped, value
	}), nil); err != nil {
		return nil, err
	}

	// 4. Handle legacy single-word env vars kept for .env compatibility
	for envKey, confKey := range map[string]string{
		"VAULT_PATH":     "vault.path",
		"WHISPER_MODEL":  "whisper.model",
		"GEMINI_API_KEY": "llm.gemini_api_key",
		"OPENAI_API_KEY": "llm.openai_api_key",
		"HF_TOKEN":       "whisper.hf_token",
		"DOMAIN_VOCAB":   "whisper.domain_vocab",
	} {
		if v := os.Getenv(envKey); v != "" {
			k.Set(confKey, v)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = filepath.Join(os.TempDir(), "whisper-obsidian", "uploads")
	}
	if cfg.Vault.Name == "" && cfg.Vault.Path != "" {
		cfg.Vault.Name = filepath.Base(cfg.Vault.Path)
	}

	return &cfg, nil
}

// Validate checks the vault is reachable and prepares the upload directory.
func (c *Config) Validate() error {
	info, err := os.Stat(c.Vault.Path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("vault path not found: %s", c.Vault.Path)
	}
	if err := os.MkdirAll(c.Upload.Dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	return nil
}
