package monitoring

import (
	"context"
	"log/slog"
	"time"
)

// FallbackCounter is satisfied by sentiment.LabelMapper.
type FallbackCounter interface {
	FallbackCount() int64
}

// FallbackSink stores fallback counts outside the process, e.g. in valkey.
type FallbackSink interface {
	RecordFallbacks(ctx context.Context, n int64) error
}

// MonitorLabelFallbacks reports how many classifier labels fell back to
// neutral since the previous tick. sink may be nil, in which case the count
// is only logged.
func MonitorLabelFallbacks(ctx context.Context, counter FallbackCounter, sink FallbackSink, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var reported int64
	for {
		select {
		case <-ctx.Done():
			reported = ReportFallbacks(context.WithoutCancel(ctx), counter, sink, reported)
			return
		case <-ticker.C:
			reported = ReportFallbacks(ctx, counter, sink, reported)
		}
	}
}

// ReportFallbacks logs and stores the fallbacks seen after reported and
// returns the new reported total. A failed store is retried on the next call.
func ReportFallbacks(ctx context.Context, counter FallbackCounter, sink FallbackSink, reported int64) int64 {
	total := counter.FallbackCount()
	delta := total - reported
	if delta <= 0 {
		return reported
	}

	slog.Warn("[FallbackMonitor] Classifier labels defaulted to neutral",
		slog.Int64("since_last_report", delta),
		slog.Int64("total", total))

	if sink == nil {
		return total
	}

	if err := sink.RecordFallbacks(ctx, delta); err != nil {
		slog.Error("[FallbackMonitor] Failed to record fallbacks",
			slog.String("error", err.Error()))
		return reported
	}
	return total
}
