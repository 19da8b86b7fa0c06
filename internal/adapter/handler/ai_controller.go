package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/dto"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	aiuse "github.com/johnquangdev/meeting-copilot/internal/usecase/ai"
)

// SummaryService is the part of the AI usecase exposed over HTTP
type SummaryService interface {
	GenerateSummaryWithInsights(ctx context.Context, meetingID string) (aiuse.SummaryOutcome, error)
	GetSummary(ctx context.Context, meetingID string) (*entities.Summary, error)
	Ask(ctx context.Context, meetingID, question string) (*entities.ChatEntry, error)
	GetChat(ctx context.Context, meetingID string) ([]entities.ChatEntry, error)
	ClearChat(ctx context.Context, meetingID string) error
	CleanTranscriptChunk(ctx context.Context, text string) string
	Enabled() bool
}

// AIController handles API endpoints that trigger AI processing
type AIController struct {
	svc    SummaryService
	logger *zap.Logger
}

// NewAIController creates a new AI controller
func NewAIController(svc SummaryService, logger *zap.Logger) *AIController {
	return &AIController{svc: svc, logger: logger}
}

// GetSummary returns the stored summary, or the pending message
// @Summary      Get meeting summary
// @Description  Returns the stored summary. Before generation the summary text is "Summary will be generated after the meeting..." and pending is true.
// @Tags         AI
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  dto.MeetingSummaryResponse
// @Failure      500  {object}  common.ErrorResponse
// @Router       /meetings/{id}/summary [get]
func (ac *AIController) GetSummary(c echo.Context) error {
	meetingID := c.Param("id")
	summary, err := ac.svc.GetSummary(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(ac.logger, c, errors.ErrDBQueryFailed("get summary", err))
	}
	return HandleSuccess(ac.logger, c, presenter.ToSummaryResponse(meetingID, summary))
}

// GenerateSummary runs summary generation now
// @Summary      Generate meeting summary
// @Description  Generates summary, action items and insights unless a valid summary exists. Safe to call repeatedly.
// @Tags         AI
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  dto.SummaryStatusResponse
// @Failure      500  {object}  common.ErrorResponse
// @Failure      503  {object}  common.ErrorResponse  "AI disabled"
// @Router       /meetings/{id}/summary [post]
func (ac *AIController) GenerateSummary(c echo.Context) error {
	meetingID := c.Param("id")
	if !ac.svc.Enabled() {
		return HandleError(ac.logger, c, errors.ErrAIServiceUnavailable("ai"))
	}

	outcome, err := ac.svc.GenerateSummaryWithInsights(c.Request().Context(), meetingID)
	if err != nil {
		if ac.logger != nil {
			ac.logger.Error("failed to generate summary",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
		return HandleError(ac.logger, c, errors.ErrAISummaryFailed(err))
	}

	summary, err := ac.svc.GetSummary(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(ac.logger, c, errors.ErrDBQueryFailed("get summary", err))
	}
	return HandleSuccess(ac.logger, c, dto.SummaryStatusResponse{
		MeetingID: meetingID,
		Outcome:   string(outcome),
		Summary:   presenter.ToSummaryResponse(meetingID, summary),
	})
}

// GetChat returns the question and answer history
// @Summary      Get meeting chat
// @Tags         AI
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  dto.ChatResponse
// @Router       /meetings/{id}/chat [get]
func (ac *AIController) GetChat(c echo.Context) error {
	meetingID := c.Param("id")
	chat, err := ac.svc.GetChat(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(ac.logger, c, errors.ErrDBQueryFailed("get chat", err))
	}
	return HandleSuccess(ac.logger, c, dto.ChatResponse{MeetingID: meetingID, Chat: chat})
}

// Ask answers a question about the meeting transcript
// @Summary      Ask about a meeting
// @Tags         AI
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string          true  "Meeting ID"
// @Param        request  body      dto.AskRequest  true  "Question"
// @Success      200      {object}  entities.ChatEntry
// @Failure      400      {object}  common.ErrorResponse
// @Failure      503      {object}  common.ErrorResponse  "AI disabled"
// @Router       /meetings/{id}/chat [post]
func (ac *AIController) Ask(c echo.Context) error {
	meetingID := c.Param("id")
	var req dto.AskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(ac.logger, c, err)
	}

	entry, err := ac.svc.Ask(c.Request().Context(), meetingID, req.Question)
	if err != nil {
		return HandleError(ac.logger, c, orElse(err, meetingID, func(err error) errors.AppError {
			return errors.ErrPersistenceFailed("chat", err)
		}))
	}
	return HandleSuccess(ac.logger, c, entry)
}

// ClearChat empties the chat history
// @Summary      Clear meeting chat
// @Tags         AI
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  common.MessageResponse
// @Router       /meetings/{id}/chat [delete]
func (ac *AIController) ClearChat(c echo.Context) error {
	if err := ac.svc.ClearChat(c.Request().Context(), c.Param("id")); err != nil {
		return HandleError(ac.logger, c, errors.ErrPersistenceFailed("chat", err))
	}
	return HandleSuccess(ac.logger, c, common.MessageResponse{Message: "Chat cleared"})
}

// CleanSegment tidies a raw transcript chunk
// @Summary      Clean a transcript segment
// @Description  Removes filler words and fixes punctuation. Failures return a placeholder text, never an error.
// @Tags         AI
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.CleanSegmentRequest  true  "Raw text"
// @Success      200      {object}  dto.CleanSegmentResponse
// @Failure      400      {object}  common.ErrorResponse
// @Router       /ai/clean-segment [post]
func (ac *AIController) CleanSegment(c echo.Context) error {
	var req dto.CleanSegmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(ac.logger, c, err)
	}
	text := ac.svc.CleanTranscriptChunk(c.Request().Context(), req.Text)
	return HandleSuccess(ac.logger, c, dto.CleanSegmentResponse{Text: text})
}
