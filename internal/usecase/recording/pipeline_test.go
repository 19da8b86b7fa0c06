package recording

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrack struct {
	kind TrackKind

	mu    sync.Mutex
	buf   []byte
	stops int
}

func (t *fakeTrack) Kind() TrackKind { return t.kind }

func (t *fakeTrack) ReadAvailable() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.buf
	t.buf = nil
	return out
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
}

func (t *fakeTrack) write(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, make([]byte, n)...)
}

func (t *fakeTrack) stopCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

type fakeDevices struct {
	display, mic       *fakeTrack
	displayErr, micErr error
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{
		display: &fakeTrack{kind: TrackDisplay},
		mic:     &fakeTrack{kind: TrackMicrophone},
	}
}

func (d *fakeDevices) AcquireDisplay(context.Context) (Track, error) {
	if d.displayErr != nil {
		return nil, d.displayErr
	}
	return d.display, nil
}

func (d *fakeDevices) AcquireMicrophone(context.Context) (Track, error) {
	if d.micErr != nil {
		return nil, d.micErr
	}
	return d.mic, nil
}

// fakeTranscriber replies "chunk-N" for the Nth call, or the scripted error
type fakeTranscriber struct {
	mu    sync.Mutex
	calls int
	errs  map[int]error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioBase64, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.calls
	f.calls++
	if err := f.errs[n]; err != nil {
		return "", err
	}
	return fmt.Sprintf("chunk-%d", n), nil
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type segmentSink struct {
	ch chan []entities.TranscriptSegment
}

func newSegmentSink() *segmentSink {
	return &segmentSink{ch: make(chan []entities.TranscriptSegment, 16)}
}

func (s *segmentSink) handle(segs []entities.TranscriptSegment) { s.ch <- segs }

func (s *segmentSink) next(t *testing.T) []entities.TranscriptSegment {
	t.Helper()
	select {
	case segs := <-s.ch:
		return segs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for segments")
		return nil
	}
}

func newTestPipeline(devices Devices, tr *fakeTranscriber, clk clock.Clock) *Pipeline {
	return NewPipeline(devices, tr, PipelineConfig{
		ChunkInterval: 6 * time.Second,
		MinChunkBytes: 8000,
		Clock:         clk,
	})
}

func waitDrained(t *testing.T, p *Pipeline) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Wait(ctx))
}

func TestPipeline_EmitsOneSegmentPerChunkInOrder(t *testing.T) {
	clk := clock.NewMock()
	devices := newFakeDevices()
	tr := &fakeTranscriber{}
	sink := newSegmentSink()
	p := newTestPipeline(devices, tr, clk)

	require.NoError(t, p.Start(context.Background(), sink.handle))
	assert.Equal(t, StateRecording, p.State())

	for i := 0; i < 3; i++ {
		devices.display.write(16000)
		devices.mic.write(9000)
		clk.Add(6 * time.Second)

		segs := sink.next(t)
		require.Len(t, segs, 1)
		assert.Equal(t, fmt.Sprintf("chunk-%d", i), segs[0].Text)
		assert.Equal(t, clk.Now().UTC().Truncate(time.Millisecond), segs[0].Timestamp)
	}

	p.Stop()
	waitDrained(t, p)
	assert.Equal(t, 3, tr.callCount())
	assert.Equal(t, StateStopped, p.State())
}

func TestPipeline_SkipsChunksBelowThreshold(t *testing.T) {
	clk := clock.NewMock()
	devices := newFakeDevices()
	tr := &fakeTranscriber{}
	sink := newSegmentSink()
	p := newTestPipeline(devices, tr, clk)

	require.NoError(t, p.Start(context.Background(), sink.handle))

	// 7000 PCM bytes plus the WAV header stays under 8000
	devices.display.write(7000)
	clk.Add(6 * time.Second)

	p.Stop()
	waitDrained(t, p)

	assert.Equal(t, 0, tr.callCount())
	assert.Empty(t, sink.ch)
}

func TestPipeline_StopFlushesLastChunk(t *testing.T) {
	clk := clock.NewMock()
	devices := newFakeDevices()
	tr := &fakeTranscriber{}
	sink := newSegmentSink()
	p := newTestPipeline(devices, tr, clk)

	require.NoError(t, p.Start(context.Background(), sink.handle))
	devices.mic.write(20000)

	p.Stop()
	waitDrained(t, p)

	segs := sink.next(t)
	assert.Equal(t, "chunk-0", segs[0].Text)
	assert.Equal(t, 1, devices.display.stopCount())
	assert.Equal(t, 1, devices.mic.stopCount())
}

func TestPipeline_TranscriptionErrorDoesNotAbort(t *testing.T) {
	clk := clock.NewMock()
	devices := newFakeDevices()
	tr := &fakeTranscriber{errs: map[int]error{0: errors.New("gemini returned status 500")}}
	sink := newSegmentSink()
	p := newTestPipeline(devices, tr, clk)

	require.NoError(t, p.Start(context.Background(), sink.handle))

	devices.display.write(16000)
	clk.Add(6 * time.Second)
	require.Eventually(t, func() bool { return tr.callCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	devices.display.write(16000)
	clk.Add(6 * time.Second)

	segs := sink.next(t)
	assert.Equal(t, "chunk-1", segs[0].Text)

	p.Stop()
	waitDrained(t, p)
	assert.Equal(t, 2, tr.callCount())
}

func TestPipeline_StartFailureReleasesAcquiredTracks(t *testing.T) {
	devices := newFakeDevices()
	devices.micErr = entities.ErrPermissionDenied
	p := newTestPipeline(devices, &fakeTranscriber{}, clock.NewMock())

	err := p.Start(context.Background(), nil)
	require.ErrorIs(t, err, entities.ErrPermissionDenied)
	assert.Equal(t, 1, devices.display.stopCount())
	assert.Equal(t, StateIdle, p.State())
}

func TestPipeline_UnsupportedDisplayPropagates(t *testing.T) {
	devices := newFakeDevices()
	devices.displayErr = entities.ErrCaptureUnsupported
	p := newTestPipeline(devices, &fakeTranscriber{}, clock.NewMock())

	err := p.Start(context.Background(), nil)
	require.ErrorIs(t, err, entities.ErrCaptureUnsupported)
	assert.Equal(t, 0, devices.mic.stopCount())
}

func TestPipeline_StopIsIdempotent(t *testing.T) {
	devices := newFakeDevices()
	p := newTestPipeline(devices, &fakeTranscriber{}, clock.NewMock())

	// stop before start does nothing
	p.Stop()
	assert.Equal(t, StateIdle, p.State())
	waitDrained(t, p)

	require.NoError(t, p.Start(context.Background(), nil))
	assert.ErrorIs(t, p.Start(context.Background(), nil), entities.ErrAlreadyRecording)

	p.Stop()
	p.Stop()
	assert.Equal(t, 1, devices.display.stopCount())
	assert.Equal(t, 1, devices.mic.stopCount())
	assert.ErrorIs(t, p.Start(context.Background(), nil), ErrPipelineStopped)
}

func TestChunkTask_EmptyReply(t *testing.T) {
	task := chunkTask{index: 4, wav: []byte("RIFF")}
	res := task.run(context.Background(), emptyTranscriber{}, clock.NewMock())
	assert.True(t, res.Empty)
	assert.Equal(t, 4, res.Index)
	assert.Nil(t, res.Segments)
}

func TestChunkTask_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := chunkTask{}.run(ctx, emptyTranscriber{}, clock.NewMock())
	assert.ErrorIs(t, res.Err, context.Canceled)
}

type emptyTranscriber struct{}

func (emptyTranscriber) Transcribe(context.Context, string, string) (string, error) { return "", nil }
