package recording

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/observability"
	"github.com/johnquangdev/meeting-copilot/pkg/ai"
	"github.com/johnquangdev/meeting-copilot/pkg/audio"
	"go.uber.org/zap"
)

// ErrPipelineStopped is returned when Start is called on a pipeline that already ran
var ErrPipelineStopped = errors.New("pipeline already stopped")

const taskQueueSize = 32

// State is the lifecycle position of a pipeline
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SegmentsHandler receives each transcribed chunk as a single element list
type SegmentsHandler func(segments []entities.TranscriptSegment)

// ChunkHook observes every chunk that is sent for transcription
type ChunkHook func(ctx context.Context, index int, wav []byte)

// PipelineConfig tunes the chunk loop
type PipelineConfig struct {
	ChunkInterval time.Duration
	MinChunkBytes int
	Format        audio.Format
	Provider      string
	Clock         clock.Clock
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	OnChunk       ChunkHook
}

// Pipeline captures the merged display and microphone audio in fixed
// windows and transcribes each window on a single sequential worker.
type Pipeline struct {
	devices     Devices
	transcriber ai.Transcriber
	cfg         PipelineConfig
	mimeType    string

	mu         sync.Mutex
	state      State
	tracks     []Track
	merge      *audio.MergeNode
	ticker     *clock.Ticker
	stopCh     chan struct{}
	loopDone   chan struct{}
	workerDone chan struct{}
	tasks      chan chunkTask
	onSegments SegmentsHandler
	index      int
}

// NewPipeline creates an idle pipeline
func NewPipeline(devices Devices, transcriber ai.Transcriber, cfg PipelineConfig) *Pipeline {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = 6 * time.Second
	}
	if cfg.MinChunkBytes <= 0 {
		cfg.MinChunkBytes = 8000
	}
	if cfg.Format.SampleRate == 0 {
		cfg.Format = audio.DefaultFormat
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewNopMetrics()
	}
	return &Pipeline{
		devices:     devices,
		transcriber: transcriber,
		cfg:         cfg,
		mimeType:    audio.SelectMimeType(audio.ServerEncoderSupports),
	}
}

// State returns the current lifecycle state
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start acquires the display track then the microphone track and begins
// chunked recording. Tracks acquired before a failure are released.
func (p *Pipeline) Start(ctx context.Context, onSegments SegmentsHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateRecording:
		return entities.ErrAlreadyRecording
	case StateStopped:
		return ErrPipelineStopped
	}

	display, err := p.devices.AcquireDisplay(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire display audio: %w", err)
	}
	mic, err := p.devices.AcquireMicrophone(ctx)
	if err != nil {
		display.Stop()
		return fmt.Errorf("failed to acquire microphone: %w", err)
	}

	p.tracks = []Track{display, mic}
	p.merge = audio.NewMergeNode(display, mic)
	p.onSegments = onSegments
	p.stopCh = make(chan struct{})
	p.loopDone = make(chan struct{})
	p.workerDone = make(chan struct{})
	p.tasks = make(chan chunkTask, taskQueueSize)
	p.ticker = p.cfg.Clock.Ticker(p.cfg.ChunkInterval)
	p.state = StateRecording

	// transcription outlives the request that started it
	workerCtx := context.WithoutCancel(ctx)
	go p.loop(workerCtx)
	go p.worker(workerCtx)

	if p.cfg.Logger != nil {
		p.cfg.Logger.Info("🎙️ Recording started",
			zap.Duration("chunk_interval", p.cfg.ChunkInterval),
			zap.String("mime_type", p.mimeType),
		)
	}
	return nil
}

// Stop ends recording. The in-flight window is flushed through the normal
// path so the last chunk is still transcribed. Calling Stop on an idle or
// stopped pipeline does nothing.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.state != StateRecording {
		p.mu.Unlock()
		return
	}
	p.state = StateStopped
	p.ticker.Stop()
	close(p.stopCh)
	loopDone := p.loopDone
	p.mu.Unlock()

	<-loopDone

	p.mu.Lock()
	tracks := p.tracks
	p.tracks = nil
	p.mu.Unlock()
	for _, t := range tracks {
		t.Stop()
	}

	if p.cfg.Logger != nil {
		p.cfg.Logger.Info("⏹️ Recording stopped", zap.Int("chunks", p.index))
	}
}

// Wait blocks until every queued chunk has been transcribed and emitted
func (p *Pipeline) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.workerDone
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) loop(ctx context.Context) {
	defer close(p.loopDone)
	defer close(p.tasks)

	for {
		select {
		case <-p.ticker.C:
			p.flush(ctx)
		case <-p.stopCh:
			p.flush(ctx)
			return
		}
	}
}

// flush closes the current window and queues it for transcription
func (p *Pipeline) flush(ctx context.Context) {
	pcm := p.merge.Drain()
	wav := audio.EncodeWAV(pcm, p.cfg.Format)
	p.cfg.Metrics.ChunkBytes.Observe(float64(len(wav)))

	if len(pcm) == 0 || len(wav) < p.cfg.MinChunkBytes {
		p.cfg.Metrics.ChunksTotal.WithLabelValues(observability.ChunkSkipped).Inc()
		return
	}

	task := chunkTask{index: p.index, wav: wav, mimeType: p.mimeType}
	p.index++

	select {
	case p.tasks <- task:
	case <-ctx.Done():
	}
}

func (p *Pipeline) worker(ctx context.Context) {
	defer close(p.workerDone)

	for task := range p.tasks {
		if p.cfg.OnChunk != nil {
			p.cfg.OnChunk(ctx, task.index, task.wav)
		}

		start := time.Now()
		res := task.run(ctx, p.transcriber, p.cfg.Clock)
		p.cfg.Metrics.TranscriptionSeconds.WithLabelValues(p.cfg.Provider).Observe(time.Since(start).Seconds())

		p.handle(res)
	}
}

func (p *Pipeline) handle(res ChunkResult) {
	switch {
	case res.Err != nil:
		p.cfg.Metrics.ChunksTotal.WithLabelValues(observability.ChunkFailed).Inc()
		if p.cfg.Logger != nil {
			p.cfg.Logger.Warn("⚠️ Chunk transcription failed",
				zap.Int("chunk", res.Index),
				zap.Error(res.Err),
			)
		}
	case res.Empty:
		p.cfg.Metrics.ChunksTotal.WithLabelValues(observability.ChunkEmpty).Inc()
	default:
		p.cfg.Metrics.ChunksTotal.WithLabelValues(observability.ChunkTranscribed).Inc()
		p.cfg.Metrics.TranscriptSegments.Add(float64(len(res.Segments)))
		if p.onSegments != nil {
			p.onSegments(res.Segments)
		}
	}
}
