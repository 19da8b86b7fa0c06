package recording

import "context"

// TrackKind names the source a track captures
type TrackKind string

const (
	TrackDisplay    TrackKind = "display"
	TrackMicrophone TrackKind = "microphone"
)

// IsValid reports whether k is a known source
func (k TrackKind) IsValid() bool {
	return k == TrackDisplay || k == TrackMicrophone
}

// Track is one acquired PCM source
type Track interface {
	Kind() TrackKind
	// ReadAvailable drains buffered PCM without blocking
	ReadAvailable() []byte
	Stop()
}

// Devices acquires capture tracks. Implementations return
// entities.ErrCaptureUnsupported or entities.ErrPermissionDenied on failure.
type Devices interface {
	AcquireDisplay(ctx context.Context) (Track, error)
	AcquireMicrophone(ctx context.Context) (Track, error)
}

// Permission is what a client declares for each source when starting
type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
)

// Capabilities describes the capture sources a client can provide
type Capabilities struct {
	Display    Permission
	Microphone Permission
}

// IngestDevices are devices fed by pushed audio frames
type IngestDevices interface {
	Devices
	Push(kind TrackKind, pcm []byte) error
}

// IngestFactory creates fresh ingest devices for one session
type IngestFactory func(caps Capabilities) IngestDevices
