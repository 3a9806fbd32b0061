package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved client configuration.
type Config struct {
	APIBase        string        `validate:"required,http_url"`
	Token          string        `validate:"-"`
	RequestTimeout time.Duration `validate:"gt=0s"`
	PollInterval   time.Duration `validate:"gte=1s"`
	PageSize       int           `validate:"gte=0,lte=100"`
	LogFile        string        `validate:"required"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
}

const (
	defaultConfigPath     = "~/.config/retriever/config.toml"
	defaultAPIBase        = "http://127.0.0.1:8000"
	defaultLogFile        = "~/.local/state/retriever/retriever.log"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
	defaultPollInterval   = 30 * time.Second

	EnvAPIBase  = "RETRIEVER_API_BASE"
	EnvToken    = "RETRIEVER_TOKEN"
	EnvLogLevel = "RETRIEVER_LOG_LEVEL"
)

type fileConfig struct {
	APIBase        string `toml:"api_base"`
	Token          string `toml:"token"`
	TokenFile      string `toml:"token_file"`
	RequestTimeout string `toml:"request_timeout"`
	PollInterval   string `toml:"poll_interval"`
	PageSize       int    `toml:"page_size_override"`
	LogFile        string `toml:"log_file"`
	LogLevel       string `toml:"log_level"`
}

var validate = validator.New()

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:        defaultAPIBase,
		RequestTimeout: defaultRequestTimeout,
		PollInterval:   defaultPollInterval,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
	}
}

// Load reads the TOML config at path (or the default location), applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := resolve(raw)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// ignored.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func resolve(raw fileConfig) (Config, error) {
	cfg := Default()

	if v := firstSet(os.Getenv(EnvAPIBase), raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	cfg.APIBase = normalizeBase(cfg.APIBase)

	token := firstSet(os.Getenv(EnvToken), raw.Token)
	if token == "" && strings.TrimSpace(raw.TokenFile) != "" {
		tokenPath, err := expandPath(raw.TokenFile)
		if err != nil {
			return Config{}, fmt.Errorf("token file: %w", err)
		}
		data, err := os.ReadFile(tokenPath)
		if err != nil {
			return Config{}, fmt.Errorf("read token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	cfg.Token = token

	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.PollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	cfg.PageSize = raw.PageSize

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		expanded, err := expandPath(v)
		if err != nil {
			return Config{}, fmt.Errorf("log file: %w", err)
		}
		cfg.LogFile = expanded
	}
	if v := firstSet(os.Getenv(EnvLogLevel), raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", first.Field(), first.Tag(), first.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasToken reports whether a bearer token is configured.
func (c Config) HasToken() bool {
	return strings.TrimSpace(c.Token) != ""
}

// LogPath returns the client log file, defaulting when unset.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return mustExpand(defaultLogFile)
	}
	return c.LogFile
}

func normalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base != "" && !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return strings.TrimRight(base, "/")
}

func firstSet(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
