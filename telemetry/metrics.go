// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommandsTotal     prometheus.Counter
	TranslationsTotal *prometheus.CounterVec // by tier
	BackendErrors     prometheus.Counter
	QuotaRejections   prometheus.Counter
	DetectionsLocal   prometheus.Counter
	ChunksSent        prometheus.Counter

	// Histograms (seconds)
	CommandDuration prometheus.Observer
	BackendDuration prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandsTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_total", Help: "Number of chat commands handled"})
		TranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bot_translations_total", Help: "Number of completed translations"}, []string{"tier"})
		BackendErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_backend_errors_total", Help: "Number of empty/failed completion backend replies"})
		QuotaRejections = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_quota_rejections_total", Help: "Number of commands rejected by quota limits"})
		DetectionsLocal = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_detections_local_total", Help: "Number of language detections answered locally"})
		ChunksSent = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_chunks_sent_total", Help: "Number of chat message chunks sent"})
		CommandDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "bot_command_duration_seconds", Help: "Command handling duration seconds", Buckets: prometheus.DefBuckets})
		BackendDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "bot_backend_duration_seconds", Help: "Completion backend call duration seconds", Buckets: prometheus.DefBuckets})
	})
}

// The Inc helpers tolerate uninitialized metrics so library code can record
// without caring whether Init ran (it doesn't in unit tests).

func IncCommand() {
	if CommandsTotal != nil {
		CommandsTotal.Inc()
	}
}

func IncTranslation(tier string) {
	if TranslationsTotal != nil {
		TranslationsTotal.WithLabelValues(tier).Inc()
	}
}

func IncBackendError() {
	if BackendErrors != nil {
		BackendErrors.Inc()
	}
}

func IncQuotaRejected() {
	if QuotaRejections != nil {
		QuotaRejections.Inc()
	}
}

func IncLocalDetection() {
	if DetectionsLocal != nil {
		DetectionsLocal.Inc()
	}
}

func AddChunksSent(n int) {
	if ChunksSent != nil {
		ChunksSent.Add(float64(n))
	}
}

func ObserveCommandDuration(d time.Duration) {
	if CommandDuration != nil {
		CommandDuration.Observe(d.Seconds())
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LogWith returns a logger carrying the context's correlation id, if any.
func LogWith(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr_id", id))
	}
	return slog.Default()
}
