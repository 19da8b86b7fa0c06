package media

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/recording"
	"github.com/johnquangdev/meeting-copilot/pkg/audio"
)

// FileDevices replay PCM or WAV files at real-time pace.
// A source with no file is a silent track.
type FileDevices struct {
	displayPath string
	micPath     string
	format      audio.Format
	clock       clock.Clock

	mu     sync.Mutex
	tracks []*fileTrack
}

// NewFileDevices creates devices over the given files. Raw .pcm files are
// read as format; .wav files carry their own header.
func NewFileDevices(displayPath, micPath string, format audio.Format, clk clock.Clock) *FileDevices {
	if clk == nil {
		clk = clock.New()
	}
	return &FileDevices{
		displayPath: displayPath,
		micPath:     micPath,
		format:      format,
		clock:       clk,
	}
}

// AcquireDisplay opens the display file
func (d *FileDevices) AcquireDisplay(ctx context.Context) (recording.Track, error) {
	return d.open(recording.TrackDisplay, d.displayPath)
}

// AcquireMicrophone opens the microphone file
func (d *FileDevices) AcquireMicrophone(ctx context.Context) (recording.Track, error) {
	return d.open(recording.TrackMicrophone, d.micPath)
}

// Exhausted reports whether every opened file has been fully replayed
func (d *FileDevices) Exhausted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.tracks {
		if !t.exhausted() {
			return false
		}
	}
	return true
}

// Duration is the length of the longest opened file
func (d *FileDevices) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	var longest time.Duration
	for _, t := range d.tracks {
		if dur := d.format.Duration(len(t.pcm)); dur > longest {
			longest = dur
		}
	}
	return longest
}

func (d *FileDevices) open(kind recording.TrackKind, path string) (recording.Track, error) {
	var pcm []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s audio file: %w", kind, err)
		}
		pcm = data
		if strings.HasSuffix(strings.ToLower(path), ".wav") {
			decoded, f, err := audio.DecodeWAV(data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", path, err)
			}
			if f != d.format {
				return nil, fmt.Errorf("%s is %d Hz/%d ch/%d bit, want %d Hz mono 16 bit",
					path, f.SampleRate, f.Channels, f.BitsPerSample, d.format.SampleRate)
			}
			pcm = decoded
		}
	}

	t := &fileTrack{
		kind:    kind,
		pcm:     pcm,
		clock:   d.clock,
		started: d.clock.Now(),
		rate:    d.format.ByteRate(),
	}
	d.mu.Lock()
	d.tracks = append(d.tracks, t)
	d.mu.Unlock()
	return t, nil
}

type fileTrack struct {
	kind    recording.TrackKind
	pcm     []byte
	clock   clock.Clock
	started time.Time
	rate    int

	mu      sync.Mutex
	offset  int
	stopped bool
}

func (t *fileTrack) Kind() recording.TrackKind { return t.kind }

// ReadAvailable returns the bytes that would have played since the last read
func (t *fileTrack) ReadAvailable() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return nil
	}
	due := int(t.clock.Since(t.started).Seconds() * float64(t.rate))
	due -= due % 2
	if due > len(t.pcm) {
		due = len(t.pcm)
	}
	if due <= t.offset {
		return nil
	}
	out := t.pcm[t.offset:due]
	t.offset = due
	return out
}

func (t *fileTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fileTrack) exhausted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped || t.clock.Since(t.started).Seconds()*float64(t.rate) >= float64(len(t.pcm))
}
