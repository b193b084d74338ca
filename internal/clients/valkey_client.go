package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/newsmood/config"
	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_FALLBACK_TOTAL_KEY  = "newsmood:label_fallbacks:total"
	VALKEY_FALLBACK_DAILY_KEY  = "newsmood:label_fallbacks:"
	VALKEY_FALLBACK_DAILY_TTL  = 7 * 24 * 60 * 60
	VALKEY_FALLBACK_DAY_LAYOUT = "2006-01-02"
	VALKEY_WRITE_ATTEMPTS      = 3
	VALKEY_RETRY_BACKOFF       = 250 * time.Millisecond
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
	valkeyInitErr  error
)

type ValkeyClient struct {
	Client valkey.Client
	cfg    config.ValkeyConfig
	mu     sync.Mutex
}

func newValkeyClient(cfg config.ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.Address,
		},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}

	return client, nil
}

// InitValkey connects once per process. Later calls return the same client
// (or the same error).
func InitValkey(cfg config.ValkeyConfig) (*ValkeyClient, error) {
	valkeyOnce.Do(func() {
		client, err := newValkeyClient(cfg)
		if err != nil {
			valkeyInitErr = err
			return
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey",
			slog.String("address", cfg.Address))
		valkeyInstance = &ValkeyClient{Client: client, cfg: cfg}
	})
	return valkeyInstance, valkeyInitErr
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.mu.Lock()
		defer valkeyInstance.mu.Unlock()
		valkeyInstance.Client.Close()
	}
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := newValkeyClient(vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}

	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

// RecordFallbacks adds n to the all-time and per-day counters of classifier
// labels that were mapped to neutral because they were not recognized. The
// increments run in one MULTI/EXEC so they land together or not at all.
func (vc *ValkeyClient) RecordFallbacks(ctx context.Context, n int64) error {
	if n <= 0 {
		return nil
	}

	dailyKey := VALKEY_FALLBACK_DAILY_KEY + time.Now().UTC().Format(VALKEY_FALLBACK_DAY_LAYOUT)
	err := retryUnsent(ctx, VALKEY_WRITE_ATTEMPTS, VALKEY_RETRY_BACKOFF, func() error {
		client := vc.client()
		b := client.B()
		err := execError(client.DoMulti(ctx,
			b.Multi().Build(),
			b.Incrby().Key(VALKEY_FALLBACK_TOTAL_KEY).Increment(n).Build(),
			b.Incrby().Key(dailyKey).Increment(n).Build(),
			b.Expire().Key(dailyKey).Seconds(VALKEY_FALLBACK_DAILY_TTL).Build(),
			b.Exec().Build(),
		))
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return err
	})
	if err != nil {
		return err
	}

	slog.Debug("[ValkeyClient] Recorded label fallbacks",
		slog.Int64("count", n),
		slog.String("key", dailyKey))
	return nil
}

// execError returns the first error of a MULTI/EXEC pipeline, including
// errors of the individual commands inside the EXEC reply.
func execError(results []valkey.ValkeyResult) error {
	for _, r := range results {
		if err := r.Error(); err != nil {
			return err
		}
	}
	if len(results) == 0 {
		return nil
	}
	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return err
	}
	for _, reply := range replies {
		if err := reply.Error(); err != nil {
			return err
		}
	}
	return nil
}

// retryUnsent calls fn up to attempts times. Only dial failures are retried,
// since the server never saw those commands.
func retryUnsent(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil || !isDialError(err) {
			return err
		}

		slog.Warn("[ValkeyClient] Write failed before reaching valkey",
			slog.Int("attempt", i),
			slog.String("error", err.Error()))
		if i == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}

func isDialError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "connection refused")
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
