package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv   = "STRATEGY_SCANNER_CONFIG"
	databasePathEnv = "DATABASE_PATH"
	portEnv         = "PORT"
	logLevelEnv     = "LOG_LEVEL"
	llmAPIKeyEnv    = "OPENAI_API_KEY"
	llmModelEnv     = "OPENAI_MODEL"
	youtubeKeyEnv   = "YOUTUBE_API_KEY"
	telegramToken   = "TELEGRAM_BOT_TOKEN"
	telegramChatID  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Scan      ScanConfig      `yaml:"scan"`
	Telegram  TelegramConfig  `yaml:"telegram"`
}

// LoggingConfig controls the zerolog setup.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig describes the sqlite run-history store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig defines how to contact the extraction model. The API key comes
// from the environment only; it is required at startup.
type LLMConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
}

// SchedulerConfig enables recurring scans. An empty cron expression disables
// scheduling.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// ScanConfig holds the default raw criteria used by scheduled scans; the
// /scrape endpoint receives its criteria per request instead. The YouTube
// key is environment-provided and only needed when scheduled scans enable
// the YouTube source.
type ScanConfig struct {
	Criteria      map[string]string `yaml:"criteria"`
	YouTubeAPIKey string            `yaml:"-"`
}

// TelegramConfig wires the digest channel for scheduled scans.
type TelegramConfig struct {
	BotToken string `yaml:"-"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present), applies environment
// overrides, and verifies startup-time secrets. A missing LLM API key is
// fatal here, never per request.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("%s is required", llmAPIKeyEnv)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(portEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(youtubeKeyEnv); v != "" {
		c.Scan.YouTubeAPIKey = v
	}
	if v := os.Getenv(telegramToken); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatID); v != "" {
		c.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info", Pretty: true},
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "./data/strategies.db"},
		LLM: LLMConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Scheduler: SchedulerConfig{CronExpression: "", Timezone: defaultTimezone, location: tz},
		Scan:      ScanConfig{Criteria: map[string]string{}},
	}
}
