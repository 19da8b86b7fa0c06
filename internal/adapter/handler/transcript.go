package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/dto/common"
	meetingDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// streamHeartbeat keeps idle SSE connections open through proxies
const streamHeartbeat = 15 * time.Second

// TranscriptService stores and streams transcripts
type TranscriptService interface {
	Document(ctx context.Context, meetingID string) (*entities.Transcript, error)
	Append(ctx context.Context, meetingID string, segments []entities.TranscriptSegment, isComplete bool) error
	Subscribe(ctx context.Context, meetingID string) (<-chan []entities.TranscriptSegment, func(), error)
	Export(ctx context.Context, meetingID string) (string, error)
}

// Transcript handles transcript requests
type Transcript struct {
	svc    TranscriptService
	clock  clock.Clock
	logger *zap.Logger
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(svc TranscriptService, clk clock.Clock, logger *zap.Logger) *Transcript {
	if clk == nil {
		clk = clock.New()
	}
	return &Transcript{svc: svc, clock: clk, logger: logger}
}

// Get handles GET /meetings/:id/transcript
// @Summary      Get transcript
// @Tags         Transcript
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meetingDTO.TranscriptResponse
// @Failure      500  {object}  common.ErrorResponse
// @Router       /meetings/{id}/transcript [get]
func (h *Transcript) Get(c echo.Context) error {
	doc, err := h.svc.Document(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("get transcript", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToTranscriptResponse(doc))
}

// Append handles POST /meetings/:id/transcript
// @Summary      Append transcript segments
// @Description  Segments go to the end of the stored list. is_complete=true finishes the meeting and queues its summary.
// @Tags         Transcript
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Meeting ID"
// @Param        request  body      meetingDTO.AppendTranscriptRequest  true  "Segments"
// @Success      200      {object}  common.MessageResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Router       /meetings/{id}/transcript [post]
func (h *Transcript) Append(c echo.Context) error {
	meetingID := c.Param("id")
	var req meetingDTO.AppendTranscriptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	now := h.clock.Now().UTC()
	segments := make([]entities.TranscriptSegment, 0, len(req.Segments))
	for _, s := range req.Segments {
		ts := now
		if s.Timestamp != nil {
			ts = s.Timestamp.UTC()
		}
		segments = append(segments, entities.TranscriptSegment{
			Text:       s.Text,
			Timestamp:  ts,
			Confidence: s.Confidence,
		})
	}

	if err := h.svc.Append(c.Request().Context(), meetingID, segments, req.IsComplete); err != nil {
		return HandleError(h.logger, c, orElse(err, meetingID, func(err error) errors.AppError {
			return errors.ErrPersistenceFailed("transcript", err)
		}))
	}
	return HandleSuccess(h.logger, c, common.MessageResponse{Message: fmt.Sprintf("%d segments appended", len(segments))})
}

// Stream handles GET /meetings/:id/transcript/stream
// @Summary      Live transcript stream
// @Description  Server-sent events. Each "transcript" event carries the full segment list, newest state only.
// @Tags         Transcript
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id            path   string  true   "Meeting ID"
// @Param        access_token  query  string  false  "Access token for EventSource clients"
// @Success      200
// @Router       /meetings/{id}/transcript/stream [get]
func (h *Transcript) Stream(c echo.Context) error {
	meetingID := c.Param("id")
	ctx := c.Request().Context()

	updates, cancel, err := h.svc.Subscribe(ctx, meetingID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrCacheFailed("subscribe", err))
	}
	defer cancel()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	heartbeat := h.clock.Ticker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case segments, ok := <-updates:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(segments)
			if err != nil {
				if h.logger != nil {
					h.logger.Error("❌ Failed to encode transcript event", zap.Error(err))
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "event: transcript\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

// Export handles GET /meetings/:id/transcript/export
// @Summary      Export transcript
// @Description  Uploads the transcript text to object storage and returns a presigned URL
// @Tags         Transcript
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meetingDTO.ExportResponse
// @Failure      500  {object}  common.ErrorResponse
// @Router       /meetings/{id}/transcript/export [get]
func (h *Transcript) Export(c echo.Context) error {
	meetingID := c.Param("id")
	url, err := h.svc.Export(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, orElse(err, meetingID, func(err error) errors.AppError {
			return errors.ErrStorageFailed("export transcript", err)
		}))
	}
	return HandleSuccess(h.logger, c, meetingDTO.ExportResponse{URL: url})
}
