package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	State     StateConfig     `yaml:"state"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
}

type OpenAIConfig struct {
	APIKey       string `yaml:"api_key"`
	ChatModel    string `yaml:"chat_model"`
	WhisperModel string `yaml:"whisper_model"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// ServerConfig configures the optional admin/stats HTTP API.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	APIKey  string `yaml:"api_key"`
}

// StateConfig locates the local SQLite database that persists per-chat
// conversation state across restarts.
type StateConfig struct {
	Dir string `yaml:"dir"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix REPBOT_ and underscore-separated paths:
//
//	REPBOT_TELEGRAM_TOKEN, REPBOT_OPENAI_API_KEY,
//	REPBOT_DB_HOST, REPBOT_DB_PORT, REPBOT_DB_NAME,
//	REPBOT_DB_USER, REPBOT_DB_PASSWORD, REPBOT_DB_SSLMODE,
//	REPBOT_SERVER_HOST, REPBOT_SERVER_PORT, REPBOT_SERVER_API_KEY,
//	REPBOT_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPBOT_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("REPBOT_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("REPBOT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPBOT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPBOT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPBOT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPBOT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPBOT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPBOT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPBOT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPBOT_SERVER_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("REPBOT_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.WhisperModel == "" {
		cfg.OpenAI.WhisperModel = "whisper-1"
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = "state"
	}
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Server.Enabled {
		if c.Server.Port == 0 {
			return fmt.Errorf("server.port is required when server.enabled")
		}
		if c.Server.APIKey == "" {
			return fmt.Errorf("server.api_key is required when server.enabled")
		}
	}
	return nil
}
