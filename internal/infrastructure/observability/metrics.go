// Package observability holds the Prometheus metrics of the service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the capture pipeline and AI calls
type Metrics struct {
	// Pipeline
	ChunksTotal          *prometheus.CounterVec
	ChunkBytes           prometheus.Histogram
	TranscriptionSeconds *prometheus.HistogramVec
	ActiveRecordings     prometheus.Gauge
	TranscriptSegments   prometheus.Counter
	LiveSubscribers      prometheus.Gauge

	// AI
	AIRequestsTotal   *prometheus.CounterVec
	AILatencySeconds  *prometheus.HistogramVec
	SummariesTotal    *prometheus.CounterVec
	SummaryQueueDepth prometheus.Gauge
}

// Chunk outcomes
const (
	ChunkTranscribed = "transcribed"
	ChunkEmpty       = "empty"
	ChunkSkipped     = "skipped"
	ChunkFailed      = "failed"
)

// NewMetrics registers the metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChunksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copilot_audio_chunks_total",
				Help: "Audio chunks by outcome",
			},
			[]string{"outcome"},
		),
		ChunkBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "copilot_audio_chunk_bytes",
				Help:    "Size of encoded audio chunks",
				Buckets: prometheus.ExponentialBuckets(4000, 2, 10),
			},
		),
		TranscriptionSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "copilot_transcription_seconds",
				Help:    "Latency of a chunk transcription call",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"provider"},
		),
		ActiveRecordings: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "copilot_active_recordings",
				Help: "Recording sessions currently running",
			},
		),
		TranscriptSegments: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "copilot_transcript_segments_total",
				Help: "Transcript segments persisted",
			},
		),
		LiveSubscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "copilot_transcript_live_subscribers",
				Help: "Open live transcript streams",
			},
		),
		AIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copilot_ai_requests_total",
				Help: "Model calls by operation and status",
			},
			[]string{"operation", "status"},
		),
		AILatencySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "copilot_ai_latency_seconds",
				Help:    "Model call latency by operation",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"operation"},
		),
		SummariesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copilot_summaries_total",
				Help: "Summary generation runs by result",
			},
			[]string{"result"},
		),
		SummaryQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "copilot_summary_queue_depth",
				Help: "Meetings waiting for summary generation",
			},
		),
	}
}

// NewNopMetrics returns metrics registered on a throwaway registry, for tests and tools
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
