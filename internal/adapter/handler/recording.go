package handler

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/dto/common"
	meetingDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/recording"
)

// maxAudioPushBytes caps one pushed PCM frame batch
const maxAudioPushBytes = 1 << 20

// RecordingManager runs capture sessions
type RecordingManager interface {
	StartSession(ctx context.Context, meetingID string, userID uuid.UUID, opts recording.StartOptions) error
	StopSession(ctx context.Context, meetingID string) error
	PushAudio(meetingID string, kind recording.TrackKind, pcm []byte) error
	Session(meetingID string) (recording.SessionInfo, bool)
}

// Recording handles capture session requests
type Recording struct {
	manager RecordingManager
	logger  *zap.Logger
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(manager RecordingManager, logger *zap.Logger) *Recording {
	return &Recording{manager: manager, logger: logger}
}

// Start handles POST /meetings/:id/recording/start
// @Summary      Start recording
// @Description  Acquires the declared capture sources and starts chunked transcription. At least one source must be usable.
// @Tags         Recording
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Meeting ID"
// @Param        request  body      meetingDTO.StartRecordingRequest  false "Capture capabilities"
// @Success      200      {object}  meetingDTO.RecordingResponse
// @Failure      400      {object}  common.ErrorResponse  "Capture unsupported"
// @Failure      403      {object}  common.ErrorResponse  "Permission denied"
// @Failure      404      {object}  common.ErrorResponse
// @Failure      409      {object}  common.ErrorResponse  "Already recording"
// @Router       /meetings/{id}/recording/start [post]
func (h *Recording) Start(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID := c.Param("id")

	var req meetingDTO.StartRecordingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	opts := recording.StartOptions{Capabilities: recording.Capabilities{
		Display:    recording.Permission(req.Display),
		Microphone: recording.Permission(req.Microphone),
	}}
	if err := h.manager.StartSession(c.Request().Context(), meetingID, userID, opts); err != nil {
		return HandleError(h.logger, c, orElse(err, meetingID, func(err error) errors.AppError {
			return errors.ErrMeetingOperationFailed("start recording", err)
		}))
	}

	return HandleSuccess(h.logger, c, h.status(meetingID))
}

// PushAudio handles POST /meetings/:id/recording/audio
// @Summary      Push captured audio
// @Description  Body is raw 16-bit little-endian mono PCM at the configured sample rate
// @Tags         Recording
// @Accept       application/octet-stream
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Meeting ID"
// @Param        source  query     string  true  "display or microphone"
// @Success      200     {object}  common.MessageResponse
// @Failure      400     {object}  common.ErrorResponse
// @Failure      409     {object}  common.ErrorResponse  "Not recording"
// @Router       /meetings/{id}/recording/audio [post]
func (h *Recording) PushAudio(c echo.Context) error {
	meetingID := c.Param("id")
	kind := recording.TrackKind(c.QueryParam("source"))
	if !kind.IsValid() {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("source must be display or microphone"))
	}

	pcm, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAudioPushBytes+1))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if len(pcm) > maxAudioPushBytes {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("audio batch too large"))
	}
	if len(pcm)%2 != 0 {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("pcm must be 16-bit samples"))
	}

	if err := h.manager.PushAudio(meetingID, kind, pcm); err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID))
	}
	return HandleSuccess(h.logger, c, common.MessageResponse{Message: "accepted"})
}

// Stop handles POST /meetings/:id/recording/stop
// @Summary      Stop recording
// @Description  Stops capture, waits for the last chunk, marks the transcript complete and queues the summary
// @Tags         Recording
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meetingDTO.RecordingResponse
// @Failure      409  {object}  common.ErrorResponse  "Not recording"
// @Failure      500  {object}  common.ErrorResponse
// @Router       /meetings/{id}/recording/stop [post]
func (h *Recording) Stop(c echo.Context) error {
	meetingID := c.Param("id")
	if err := h.manager.StopSession(c.Request().Context(), meetingID); err != nil {
		return HandleError(h.logger, c, orElse(err, meetingID, func(err error) errors.AppError {
			return errors.ErrPersistenceFailed("transcript", err)
		}))
	}
	return HandleSuccess(h.logger, c, h.status(meetingID))
}

// Status handles GET /meetings/:id/recording
// @Summary      Recording status
// @Tags         Recording
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meetingDTO.RecordingResponse
// @Router       /meetings/{id}/recording [get]
func (h *Recording) Status(c echo.Context) error {
	return HandleSuccess(h.logger, c, h.status(c.Param("id")))
}

func (h *Recording) status(meetingID string) meetingDTO.RecordingResponse {
	resp := meetingDTO.RecordingResponse{MeetingID: meetingID}
	if info, ok := h.manager.Session(meetingID); ok {
		started := info.StartedAt
		resp.Recording = true
		resp.StartedAt = &started
	}
	return resp
}
