// Package media provides the capture devices behind the recording pipeline.
package media

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/recording"
)

// ErrTrackStopped is returned when audio is pushed to a released track
var ErrTrackStopped = errors.New("track stopped")

// maxBufferedBytes caps what a track holds between drains (about 60s at 16kHz)
const maxBufferedBytes = 2 * 1024 * 1024

// IngestDevices are fed by audio frames pushed over HTTP
type IngestDevices struct {
	caps recording.Capabilities

	mu     sync.Mutex
	tracks map[recording.TrackKind]*bufferTrack
}

// NewIngestDevices creates devices honoring what the client declared
func NewIngestDevices(caps recording.Capabilities) *IngestDevices {
	return &IngestDevices{
		caps:   caps,
		tracks: make(map[recording.TrackKind]*bufferTrack),
	}
}

// AcquireDisplay returns the display/system audio track
func (d *IngestDevices) AcquireDisplay(ctx context.Context) (recording.Track, error) {
	return d.acquire(recording.TrackDisplay, d.caps.Display)
}

// AcquireMicrophone returns the microphone track
func (d *IngestDevices) AcquireMicrophone(ctx context.Context) (recording.Track, error) {
	return d.acquire(recording.TrackMicrophone, d.caps.Microphone)
}

func (d *IngestDevices) acquire(kind recording.TrackKind, perm recording.Permission) (recording.Track, error) {
	switch perm {
	case recording.PermissionUnsupported:
		return nil, entities.ErrCaptureUnsupported
	case recording.PermissionDenied:
		return nil, entities.ErrPermissionDenied
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	t := &bufferTrack{kind: kind}
	d.tracks[kind] = t
	return t, nil
}

// Push appends PCM to the track of the given kind
func (d *IngestDevices) Push(kind recording.TrackKind, pcm []byte) error {
	d.mu.Lock()
	t, ok := d.tracks[kind]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", kind, entities.ErrCaptureUnsupported)
	}
	return t.write(pcm)
}

type bufferTrack struct {
	kind recording.TrackKind

	mu      sync.Mutex
	buf     []byte
	stopped bool
}

func (t *bufferTrack) Kind() recording.TrackKind { return t.kind }

func (t *bufferTrack) ReadAvailable() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.buf
	t.buf = nil
	return out
}

func (t *bufferTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.buf = nil
}

func (t *bufferTrack) write(pcm []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return ErrTrackStopped
	}
	t.buf = append(t.buf, pcm...)
	// drop the oldest audio when the reader falls behind, keeping sample alignment
	if over := len(t.buf) - maxBufferedBytes; over > 0 {
		over += over % 2
		t.buf = t.buf[over:]
	}
	return nil
}
