package storage

import (
	"context"
	"time"

	"github.com/jwalitptl/patient-records/pkg/metrics"
)

// InstrumentedStorage decorates a Storage with prometheus counters and
// latency histograms.
type InstrumentedStorage struct {
	inner   Storage
	backend string
	metrics *metrics.Metrics
}

func Instrument(inner Storage, backend string, m *metrics.Metrics) *InstrumentedStorage {
	return &InstrumentedStorage{inner: inner, backend: backend, metrics: m}
}

func (s *InstrumentedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, key)
	s.observe("get", start, err)
	return value, ok, err
}

func (s *InstrumentedStorage) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value)
	s.observe("set", start, err)
	return err
}

func (s *InstrumentedStorage) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Remove(ctx, key)
	s.observe("remove", start, err)
	return err
}

func (s *InstrumentedStorage) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StorageOperations.WithLabelValues(s.backend, op, status).Inc()
	s.metrics.StorageLatency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}
