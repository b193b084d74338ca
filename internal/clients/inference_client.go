package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/newsmood/config"
	"github.com/spacesedan/newsmood/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// InferenceClient talks to a remote text-classification server that accepts
// {"inputs": "..."} and answers with label/score pairs.
type InferenceClient struct {
	Client      *http.Client
	Endpoint    string
	MaxAttempts int
}

// NewInferenceClient builds the HTTP client for cfg. When a token URL is set
// requests are authorized with an OAuth2 client-credentials token.
func NewInferenceClient(cfg config.RemoteConfig) *InferenceClient {
	base := &http.Client{Timeout: cfg.Timeout}

	client := base
	if cfg.TokenURL != "" {
		oauthConf := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = oauthConf.Client(ctx)
		client.Timeout = cfg.Timeout
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	slog.Info("[InferenceClient] Initializing Client",
		slog.String("endpoint", cfg.Endpoint),
		slog.Duration("timeout", cfg.Timeout),
		slog.Bool("oauth2", cfg.TokenURL != ""),
		slog.Int("max_attempts", attempts))

	return &InferenceClient{
		Client:      client,
		Endpoint:    cfg.Endpoint,
		MaxAttempts: attempts,
	}
}

// Classify posts text to the endpoint and returns every label the server
// scored.
func (c *InferenceClient) Classify(ctx context.Context, text string) (models.InferenceResponse, error) {
	start := time.Now()

	var raw json.RawMessage
	if err := c.postJSON(ctx, models.InferenceRequest{Inputs: text}, &raw); err != nil {
		slog.Error("[InferenceClient] Classification request failed",
			slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	predictions, err := decodePredictions(raw)
	if err != nil {
		slog.Error("[InferenceClient] Failed to decode predictions",
			slog.String("error", err.Error()),
			getPreview(raw))
		return nil, err
	}

	slog.Debug("[InferenceClient] Classification request successful",
		slog.Int("labels", len(predictions)),
		slog.Duration("elapsed", time.Since(start)))
	return predictions, nil
}

// decodePredictions accepts both [{...}] and the batched [[{...}]] shape.
func decodePredictions(raw []byte) (models.InferenceResponse, error) {
	var flat models.InferenceResponse
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}

	var nested []models.InferenceResponse
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(nested) == 0 {
		return nil, errors.New("empty inference response")
	}
	return nested[0], nil
}

func (c *InferenceClient) DoWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := INITIAL_BACKOFF

	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, MAX_BACKOFF)
		}

		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)

		resp, err = c.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		msg := errMsg(err, resp)
		if resp != nil {
			resp.Body.Close()
			if err == nil {
				err = errors.New(msg)
			}
		}

		slog.Warn("[InferenceClient] Request failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", c.MaxAttempts),
			slog.String("error", msg))
	}

	return nil, err
}

func (c *InferenceClient) postJSON(ctx context.Context, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := c.DoWithRetry(ctx, body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("[InferenceClient] Unexpected status code",
			slog.Int("status_code", resp.StatusCode),
			getPreview(respBody))
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[InferenceClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
