package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrMissingAPIKey 启动时未找到 API 凭据。
var ErrMissingAPIKey = errors.New("no API key found: pass --key or set OPENAI_API_KEY")

const (
	DefaultModel            = "gpt-3.5-turbo"
	DefaultTopP             = 0.1
	DefaultMaxTokens        = 500
	DefaultStyle            = "monokai"
	DefaultRenderIntervalMS = 100
)

// Config is the persisted config file schema. Fields left out of the file keep
// their defaults.
type Config struct {
	APIKey           string   `toml:"api_key"`
	BaseURL          string   `toml:"base_url"`
	Model            string   `toml:"model"`
	TopP             float64  `toml:"top_p"`
	Temperature      *float64 `toml:"temperature,omitempty"`
	MaxTokens        int64    `toml:"max_tokens"`
	Save             bool     `toml:"save"`
	BaseDir          string   `toml:"base_dir"`
	Stylesheet       string   `toml:"stylesheet"`
	Style            string   `toml:"style"`
	RenderIntervalMS int      `toml:"render_interval_ms"`
	Source           string   `toml:"-"`
}

func Default() Config {
	return Config{
		Model:            DefaultModel,
		TopP:             DefaultTopP,
		MaxTokens:        DefaultMaxTokens,
		Save:             true,
		BaseDir:          DefaultBaseDir(),
		Style:            DefaultStyle,
		RenderIntervalMS: DefaultRenderIntervalMS,
	}
}

// DefaultBaseDir 返回会话与日志的默认根目录：$GPT_CLI_BASE_DIR 或 ~/.gpt-cli。
func DefaultBaseDir() string {
	if env := strings.TrimSpace(os.Getenv("GPT_CLI_BASE_DIR")); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gpt-cli"
	}
	return filepath.Join(home, ".gpt-cli")
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gpt-cli", "config.toml")
}

// Load 读取配置文件并叠加环境变量。文件不存在不是错误。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	cfg.Source = path

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(content, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); env != "" {
		cfg.APIKey = env
	}
	if env := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); env != "" {
		cfg.BaseURL = env
	}
	if env := strings.TrimSpace(os.Getenv("GPT_CLI_BASE_DIR")); env != "" {
		cfg.BaseDir = env
	}
}

// Validate checks the settings needed before any request can be made.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be within [0, 1], got %v", c.TopP)
	}
	if t := c.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("temperature must be within [0, 2], got %v", *t)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// MessageDir 会话文件目录。
func (c Config) MessageDir() string {
	return filepath.Join(c.BaseDir, "messages")
}

// HistoryPath 输入历史文件。
func (c Config) HistoryPath() string {
	return filepath.Join(c.BaseDir, "history.jsonl")
}
