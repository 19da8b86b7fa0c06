package recording

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/pkg/ai"
)

// ChunkResult is the outcome of transcribing one chunk
type ChunkResult struct {
	Index    int
	Segments []entities.TranscriptSegment
	Err      error
	Empty    bool
}

// chunkTask is one flushed window waiting for transcription
type chunkTask struct {
	index    int
	wav      []byte
	mimeType string
}

// run transcribes the chunk. A non-empty reply becomes exactly one segment
// stamped with the completion time.
func (t chunkTask) run(ctx context.Context, transcriber ai.Transcriber, clk clock.Clock) ChunkResult {
	res := ChunkResult{Index: t.index}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	text, err := transcriber.Transcribe(ctx, base64.StdEncoding.EncodeToString(t.wav), t.mimeType)
	if err != nil {
		res.Err = err
		return res
	}
	if text == "" {
		res.Empty = true
		return res
	}

	res.Segments = []entities.TranscriptSegment{
		entities.NewTranscriptSegment(text, clk.Now().UTC().Truncate(time.Millisecond)),
	}
	return res
}
