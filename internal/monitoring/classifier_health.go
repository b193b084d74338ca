package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/newsmood/internal/models"
)

const (
	HEALTHCHECK_TIMER   = 15 * time.Second
	HEALTHCHECK_TIMEOUT = 10 * time.Second
	HEALTHCHECK_TEXT    = "Markets closed steady today."
)

type Prober interface {
	Classify(ctx context.Context, text string) (models.Prediction, error)
}

// MonitorClassifierHealth probes a remote classifier on a fixed interval and
// stores the outcome in healthy.
func MonitorClassifierHealth(ctx context.Context, prober Prober, healthy *atomic.Bool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckClassifierHealth(ctx, prober, healthy)
		}
	}
}

func CheckClassifierHealth(ctx context.Context, prober Prober, healthy *atomic.Bool) bool {
	probeCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	_, err := prober.Classify(probeCtx, HEALTHCHECK_TEXT)
	isHealthy := err == nil
	wasHealthy := healthy.Swap(isHealthy)

	if !isHealthy {
		slog.Warn("[HealthCheck] Classifier is unhealthy",
			slog.String("error", err.Error()))
	} else if !wasHealthy {
		slog.Info("[HealthCheck] Classifier recovered")
	}
	return isHealthy
}
