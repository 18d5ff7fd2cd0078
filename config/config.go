// Package config 在启动时一次性读取配置，之后只读。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath 与旧版 config/config.json 约定保持一致。
const DefaultPath = "config/config.json"

// Config holds process-wide settings; treat it as immutable after Load.
type Config struct {
	// BaseURL 生成服务地址，客户端请求 {BaseURL}/generate。
	BaseURL     string        `mapstructure:"base_url"`
	ServerAddr  string        `mapstructure:"server_addr"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	DownloadDir string        `mapstructure:"download_dir"`
	LLM         LLMConfig     `mapstructure:"llm"`
	Log         LogConfig     `mapstructure:"log"`
}

// LLMConfig 仅在 -serve 模式下使用。
type LLMConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads .env, the optional JSON file at path, then environment variables.
// Later sources override earlier ones.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return cfg, nil
}

// RequireBaseURL 客户端模式下 BASE_URL 必填。
func (c Config) RequireBaseURL() error {
	if c.BaseURL == "" {
		return errors.New("BASE_URL is not set; add it to .env, the environment or base_url in the config file")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "")
	v.SetDefault("server_addr", ":5000")
	v.SetDefault("http_timeout", "0s")
	v.SetDefault("download_dir", ".")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tokens", 500)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"base_url":       {"BASE_URL", "VITE_BASE_URL"},
		"server_addr":    {"SERVER_ADDR"},
		"http_timeout":   {"HTTP_TIMEOUT"},
		"download_dir":   {"DOWNLOAD_DIR"},
		"llm.provider":   {"LLM_PROVIDER"},
		"llm.model":      {"LLM_MODEL"},
		"llm.api_key":    {"LLM_API_KEY", "OPENAI_API_KEY"},
		"llm.base_url":   {"LLM_BASE_URL"},
		"llm.max_tokens": {"LLM_MAX_TOKENS"},
		"log.level":      {"LOG_LEVEL"},
		"log.format":     {"LOG_FORMAT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
