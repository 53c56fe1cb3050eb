package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// Исходы сжатия для метки outcome
const (
	OutcomeCompressed = "compressed"
	OutcomeUnchanged  = "unchanged"
	OutcomeCanceled   = "canceled"
)

// CompressorMetrics набор метрик сжатия
type CompressorMetrics struct {
	compressions *prometheus.CounterVec
	bytesIn      *prometheus.CounterVec
	bytesOut     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewCompressorMetrics регистрирует метрики в reg
func NewCompressorMetrics(reg prometheus.Registerer) *CompressorMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &CompressorMetrics{
		compressions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailbridge",
			Name:      "compressions_total",
			Help:      "Number of compression calls by tier and outcome",
		}, []string{"tier", "outcome"}),
		bytesIn: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailbridge",
			Name:      "compression_input_bytes_total",
			Help:      "Bytes passed to the compressor",
		}, []string{"tier"}),
		bytesOut: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailbridge",
			Name:      "compression_output_bytes_total",
			Help:      "Bytes returned by successful compressions",
		}, []string{"tier"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mailbridge",
			Name:      "compression_duration_seconds",
			Help:      "Compression latency by tier",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"tier"}),
	}
}

// InstrumentedCompressor декоратор, считающий вызовы компрессора
type InstrumentedCompressor struct {
	next    repositories.PDFCompressor
	metrics *CompressorMetrics
}

var _ repositories.PDFCompressor = (*InstrumentedCompressor)(nil)

// NewInstrumentedCompressor оборачивает компрессор метриками
func NewInstrumentedCompressor(next repositories.PDFCompressor, metrics *CompressorMetrics) *InstrumentedCompressor {
	return &InstrumentedCompressor{next: next, metrics: metrics}
}

// Compress вызывает вложенный компрессор и записывает исход
func (c *InstrumentedCompressor) Compress(ctx context.Context, data []byte, quality entities.Quality) ([]byte, int, error) {
	tier := entities.ClassifyTier(len(data)).String()
	start := time.Now()

	out, n, err := c.next.Compress(ctx, data, quality)

	c.metrics.duration.WithLabelValues(tier).Observe(time.Since(start).Seconds())
	c.metrics.bytesIn.WithLabelValues(tier).Add(float64(len(data)))
	c.metrics.compressions.WithLabelValues(tier, outcome(len(data), n, err)).Inc()
	if err == nil {
		c.metrics.bytesOut.WithLabelValues(tier).Add(float64(n))
	}
	return out, n, err
}

func outcome(original, final int, err error) string {
	var ce *entities.CompressionError
	switch {
	case err == nil && final < original:
		return OutcomeCompressed
	case err == nil:
		return OutcomeUnchanged
	case errors.As(err, &ce):
		return entities.CompressionErrorKind(ce)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return entities.CompressionErrorKind(err)
	}
}
