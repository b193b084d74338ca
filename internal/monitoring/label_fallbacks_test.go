package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeCounter struct {
	n atomic.Int64
}

func (f *fakeCounter) FallbackCount() int64 {
	return f.n.Load()
}

type fakeSink struct {
	recorded []int64
	err      error
}

func (f *fakeSink) RecordFallbacks(ctx context.Context, n int64) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, n)
	return nil
}

func TestReportFallbacksRecordsDelta(t *testing.T) {
	counter := &fakeCounter{}
	sink := &fakeSink{}

	reported := ReportFallbacks(context.Background(), counter, sink, 0)
	if reported != 0 || len(sink.recorded) != 0 {
		t.Fatalf("nothing should be recorded without fallbacks")
	}

	counter.n.Store(3)
	reported = ReportFallbacks(context.Background(), counter, sink, reported)
	counter.n.Store(5)
	reported = ReportFallbacks(context.Background(), counter, sink, reported)

	if reported != 5 {
		t.Errorf("reported = %d, want 5", reported)
	}
	if len(sink.recorded) != 2 || sink.recorded[0] != 3 || sink.recorded[1] != 2 {
		t.Errorf("recorded = %v, want [3 2]", sink.recorded)
	}
}

func TestReportFallbacksRetriesAfterSinkError(t *testing.T) {
	counter := &fakeCounter{}
	counter.n.Store(4)
	sink := &fakeSink{err: errors.New("valkey down")}

	reported := ReportFallbacks(context.Background(), counter, sink, 0)
	if reported != 0 {
		t.Fatalf("failed writes should not advance the report, got %d", reported)
	}

	sink.err = nil
	reported = ReportFallbacks(context.Background(), counter, sink, reported)
	if reported != 4 || len(sink.recorded) != 1 || sink.recorded[0] != 4 {
		t.Errorf("reported = %d, recorded = %v", reported, sink.recorded)
	}
}

func TestReportFallbacksWithoutSink(t *testing.T) {
	counter := &fakeCounter{}
	counter.n.Store(2)

	if got := ReportFallbacks(context.Background(), counter, nil, 0); got != 2 {
		t.Errorf("reported = %d, want 2", got)
	}
}

func TestMonitorLabelFallbacksFlushesOnCancel(t *testing.T) {
	counter := &fakeCounter{}
	counter.n.Store(7)
	sink := &fakeSink{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		MonitorLabelFallbacks(ctx, counter, sink, time.Hour)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}

	if len(sink.recorded) != 1 || sink.recorded[0] != 7 {
		t.Errorf("recorded = %v, want [7]", sink.recorded)
	}
}
