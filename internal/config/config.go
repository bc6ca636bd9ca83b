package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Story   StoryConfig
	Log     LogConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	Addr string `ignored:"true"`
}

// StorageConfig 描述 Keboola Storage 连接配置。
type StorageConfig struct {
	URL          string        `envconfig:"KBC_URL"`
	Token        string        `envconfig:"KBC_TOKEN"`
	Timeout      time.Duration `envconfig:"STORAGE_TIMEOUT" default:"30s"`
	PollInterval time.Duration `envconfig:"STORAGE_POLL_INTERVAL" default:"1s"`
}

// Enabled 表示是否提供了必需的凭证。
func (c StorageConfig) Enabled() bool {
	return c.URL != "" && c.Token != ""
}

// StoryConfig names the remote tables and the reference data file.
type StoryConfig struct {
	BooksPath         string `envconfig:"BOOKS_PATH" default:"in/tables/books.csv"`
	InputTable        string `envconfig:"STORY_INPUT_TABLE" default:"in.c-generator-data.story"`
	OutputTable       string `envconfig:"STORY_OUTPUT_TABLE" default:"out.c-fairytale-ai-pipeline.story"`
	LatestByTimestamp bool   `envconfig:"STORY_LATEST_BY_TIMESTAMP" default:"false"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `envconfig:"LOG_LEVEL" default:"info"`
	Encoding string `envconfig:"LOG_ENCODING" default:"json"`
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	addr, err := normalizeAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	cfg.Storage.URL = strings.TrimRight(strings.TrimSpace(cfg.Storage.URL), "/")
	cfg.Storage.Token = strings.TrimSpace(cfg.Storage.Token)

	if cfg.Storage.PollInterval <= 0 {
		return nil, fmt.Errorf("invalid STORAGE_POLL_INTERVAL value %s: must be positive", cfg.Storage.PollInterval)
	}
	if strings.TrimSpace(cfg.Story.InputTable) == "" || strings.TrimSpace(cfg.Story.OutputTable) == "" {
		return nil, fmt.Errorf("STORY_INPUT_TABLE and STORY_OUTPUT_TABLE must not be empty")
	}

	return &cfg, nil
}

// normalizeAddr 解析服务器监听地址。
func normalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}
