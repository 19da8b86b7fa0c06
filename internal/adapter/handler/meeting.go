package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/dto/common"
	meetingDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/calendar"
)

// MeetingService is the calendar and meeting usecase
type MeetingService interface {
	UpcomingEvents(ctx context.Context, userID uuid.UUID) ([]calendar.Event, error)
	EventsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]calendar.Event, error)
	SyncMeetings(ctx context.Context, userID uuid.UUID) ([]string, error)
	GetMeetingDetails(ctx context.Context, eventID string, userID uuid.UUID) (*entities.Meeting, error)
	ListMeetings(ctx context.Context, userID uuid.UUID) ([]*entities.Meeting, error)
	UpdateStatus(ctx context.Context, meetingID string, status entities.MeetingStatus) error
}

// Meeting handles calendar and meeting requests
type Meeting struct {
	svc    MeetingService
	logger *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(svc MeetingService, logger *zap.Logger) *Meeting {
	return &Meeting{svc: svc, logger: logger}
}

// calendarError keeps the connect message for token problems and reports
// everything else as a fetch failure
func calendarError(err error) error {
	return orElse(err, "", errors.ErrCalendarFetchFailed)
}

// ListEvents handles GET /calendar/events
// @Summary      List calendar video events
// @Description  Without from/to returns events from now until next Sunday midnight. With both, up to 100 events in the window.
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "RFC3339 window start"
// @Param        to    query     string  false  "RFC3339 window end"
// @Success      200   {array}   meetingDTO.EventResponse
// @Failure      400   {object}  common.ErrorResponse
// @Failure      401   {object}  common.ErrorResponse  "Please connect your Google Calendar"
// @Router       /calendar/events [get]
func (h *Meeting) ListEvents(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var from, to time.Time
	if err := echo.QueryParamsBinder(c).
		Time("from", &from, time.RFC3339).
		Time("to", &to, time.RFC3339).
		BindError(); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("from and to must be RFC3339 timestamps"))
	}
	if from.IsZero() != to.IsZero() {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("from and to must be given together"))
	}
	if !from.IsZero() && !to.After(from) {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("to must be after from"))
	}

	var events []calendar.Event
	if from.IsZero() {
		events, err = h.svc.UpcomingEvents(c.Request().Context(), userID)
	} else {
		events, err = h.svc.EventsInRange(c.Request().Context(), userID, from, to)
	}
	if err != nil {
		return HandleError(h.logger, c, calendarError(err))
	}

	return HandleSuccess(h.logger, c, presenter.ToEventResponses(events))
}

// SyncCalendar handles POST /calendar/sync
// @Summary      Sync upcoming events into meetings
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meetingDTO.SyncResponse
// @Failure      400  {object}  common.ErrorResponse
// @Failure      401  {object}  common.ErrorResponse
// @Router       /calendar/sync [post]
func (h *Meeting) SyncCalendar(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	saved, err := h.svc.SyncMeetings(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, calendarError(err))
	}
	return HandleSuccess(h.logger, c, meetingDTO.SyncResponse{Saved: saved, Count: len(saved)})
}

// ListMeetings handles GET /meetings
// @Summary      List my meetings
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.ListResponse
// @Failure      401  {object}  common.ErrorResponse
// @Router       /meetings [get]
func (h *Meeting) ListMeetings(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meetings, err := h.svc.ListMeetings(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list meetings", err))
	}
	return HandleSuccess(h.logger, c, common.ListResponse{Items: meetings, Count: len(meetings)})
}

// GetMeeting handles GET /meetings/:id
// @Summary      Get meeting details
// @Description  Returns the stored meeting. An invitee without a copy gets one created from the invitation.
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting (calendar event) ID"
// @Success      200  {object}  entities.Meeting
// @Failure      403  {object}  common.ErrorResponse  "Not the owner or an accepted invitee"
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id} [get]
func (h *Meeting) GetMeeting(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID := c.Param("id")

	meeting, err := h.svc.GetMeetingDetails(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID))
	}
	return HandleSuccess(h.logger, c, meeting)
}

// UpdateStatus handles PATCH /meetings/:id/status
// @Summary      Update meeting status
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Meeting ID"
// @Param        request  body      meetingDTO.UpdateStatusRequest  true  "New status"
// @Success      200      {object}  common.MessageResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /meetings/{id}/status [patch]
func (h *Meeting) UpdateStatus(c echo.Context) error {
	meetingID := c.Param("id")
	var req meetingDTO.UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.svc.UpdateStatus(c.Request().Context(), meetingID, entities.MeetingStatus(req.Status)); err != nil {
		return HandleError(h.logger, c, orElse(err, meetingID, func(err error) errors.AppError {
			return errors.ErrMeetingOperationFailed("update status", err)
		}))
	}
	return HandleSuccess(h.logger, c, common.MessageResponse{Message: "Meeting status updated"})
}
