package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BACKEND_HUGOT  = "hugot"
	BACKEND_VADER  = "vader"
	BACKEND_REMOTE = "remote"
	BACKEND_OPENAI = "openai"
)

type Config struct {
	Env    string
	Server ServerConfig
	Log    LogConfig
	Model  ModelConfig
	Remote RemoteConfig
	OpenAI OpenAIConfig
	Valkey ValkeyConfig

	FallbackReportInterval time.Duration
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

type LogConfig struct {
	Level slog.Level
}

type ModelConfig struct {
	Backend       string
	Name          string
	Dir           string
	MaxInputChars int
	Language      string
	Serialize     bool
}

type RemoteConfig struct {
	Endpoint     string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	MaxAttempts  int
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

func (v ValkeyConfig) Enabled() bool {
	return v.Address != ""
}

// Load reads the service configuration from the environment. LoadEnv should
// be called first so .env values are visible here.
func Load(env string) (Config, error) {
	var errs []string

	cfg := Config{
		Env: env,
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8000"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second, &errs),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 120*time.Second, &errs),
		},
		Log: LogConfig{
			Level: parseLevel(getEnv("LOG_LEVEL", "info")),
		},
		Model: ModelConfig{
			Backend:       strings.ToLower(getEnv("SENTIMENT_BACKEND", BACKEND_HUGOT)),
			Name:          getEnv("SENTIMENT_MODEL", "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"),
			Dir:           getEnv("SENTIMENT_MODEL_DIR", "./models"),
			MaxInputChars: getInt("SENTIMENT_MAX_INPUT_CHARS", 512, &errs),
			Language:      strings.ToLower(getEnv("SENTIMENT_LANGUAGE", "en")),
			Serialize:     getBool("SENTIMENT_SERIALIZE", false, &errs),
		},
		Remote: RemoteConfig{
			Endpoint:     os.Getenv("INFERENCE_ENDPOINT"),
			TokenURL:     os.Getenv("INFERENCE_TOKEN_URL"),
			ClientID:     os.Getenv("INFERENCE_CLIENT_ID"),
			ClientSecret: os.Getenv("INFERENCE_CLIENT_SECRET"),
			Timeout:      getDuration("INFERENCE_TIMEOUT", 30*time.Second, &errs),
			MaxAttempts:  getInt("INFERENCE_MAX_ATTEMPTS", 1, &errs),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Valkey: ValkeyConfig{
			Address:  os.Getenv("VALKEY_INIT_ADDRESS"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			TLS:      os.Getenv("VALKEY_TLS") == "true",
		},
		FallbackReportInterval: getDuration("FALLBACK_REPORT_INTERVAL", time.Minute, &errs),
	}

	if cfg.FallbackReportInterval <= 0 {
		errs = append(errs, "FALLBACK_REPORT_INTERVAL must be positive")
	}
	if cfg.Model.MaxInputChars <= 0 {
		errs = append(errs, "SENTIMENT_MAX_INPUT_CHARS must be positive")
	}

	switch cfg.Model.Backend {
	case BACKEND_HUGOT, BACKEND_VADER:
	case BACKEND_REMOTE:
		if cfg.Remote.Endpoint == "" {
			errs = append(errs, "INFERENCE_ENDPOINT is required for the remote backend")
		}
	case BACKEND_OPENAI:
		if cfg.OpenAI.APIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required for the openai backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown SENTIMENT_BACKEND %q", cfg.Model.Backend))
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]string) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool, errs *[]string) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return defaultValue
	}
	return v
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
