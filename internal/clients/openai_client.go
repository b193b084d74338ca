package clients

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/newsmood/config"
)

const openAIRequestTimeout = 30 * time.Second

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

// GetOpenAIClient returns the process-wide OpenAI client, creating it on the
// first call.
func GetOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		slog.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		return nil, errors.New("missing OPENAI_API_KEY")
	}

	openAIOnce.Do(func() {
		httpClient := &http.Client{
			Timeout: openAIRequestTimeout,
		}

		openAIClientInstance = &OpenAIClient{
			Client: openai.NewClient(
				option.WithAPIKey(cfg.APIKey),
				option.WithHTTPClient(httpClient),
			),
			Model: cfg.Model,
		}
		slog.Info("[OpenAIClient] OpenAI client initialized",
			slog.String("model", cfg.Model),
			slog.Duration("timeout", openAIRequestTimeout))
	})
	return openAIClientInstance, nil
}
