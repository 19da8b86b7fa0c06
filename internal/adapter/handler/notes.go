package handler

import (
	"context"
	stdErrors "errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/dto/common"
	meetingDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// NoteService manages per-meeting notes
type NoteService interface {
	Add(ctx context.Context, meetingID, content string) (*entities.Note, error)
	List(ctx context.Context, meetingID string) ([]entities.Note, error)
	Update(ctx context.Context, meetingID, noteID, content string) (*entities.Note, error)
	Delete(ctx context.Context, meetingID, noteID string) error
}

// Notes handles meeting note requests
type Notes struct {
	svc    NoteService
	logger *zap.Logger
}

// NewNotesHandler creates a new notes handler
func NewNotesHandler(svc NoteService, logger *zap.Logger) *Notes {
	return &Notes{svc: svc, logger: logger}
}

func (h *Notes) noteError(err error, meetingID, noteID string) error {
	if stdErrors.Is(err, entities.ErrNoteNotFound) {
		return errors.ErrNoteNotFound(noteID)
	}
	return orElse(err, meetingID, func(err error) errors.AppError {
		return errors.ErrPersistenceFailed("notes", err)
	})
}

// List handles GET /meetings/:id/notes
// @Summary      List notes
// @Tags         Notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {array}   entities.Note
// @Router       /meetings/{id}/notes [get]
func (h *Notes) List(c echo.Context) error {
	meetingID := c.Param("id")
	notes, err := h.svc.List(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list notes", err))
	}
	return HandleSuccess(h.logger, c, notes)
}

// Create handles POST /meetings/:id/notes
// @Summary      Add a note
// @Tags         Notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Meeting ID"
// @Param        request  body      meetingDTO.NoteRequest  true  "Note"
// @Success      200      {object}  entities.Note
// @Failure      400      {object}  common.ErrorResponse
// @Router       /meetings/{id}/notes [post]
func (h *Notes) Create(c echo.Context) error {
	meetingID := c.Param("id")
	var req meetingDTO.NoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	note, err := h.svc.Add(c.Request().Context(), meetingID, req.Content)
	if err != nil {
		return HandleError(h.logger, c, h.noteError(err, meetingID, ""))
	}
	return HandleSuccess(h.logger, c, note)
}

// Update handles PUT /meetings/:id/notes/:noteId
// @Summary      Edit a note
// @Tags         Notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Meeting ID"
// @Param        noteId   path      string                  true  "Note ID"
// @Param        request  body      meetingDTO.NoteRequest  true  "Note"
// @Success      200      {object}  entities.Note
// @Failure      404      {object}  common.ErrorResponse
// @Router       /meetings/{id}/notes/{noteId} [put]
func (h *Notes) Update(c echo.Context) error {
	meetingID, noteID := c.Param("id"), c.Param("noteId")
	var req meetingDTO.NoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	note, err := h.svc.Update(c.Request().Context(), meetingID, noteID, req.Content)
	if err != nil {
		return HandleError(h.logger, c, h.noteError(err, meetingID, noteID))
	}
	return HandleSuccess(h.logger, c, note)
}

// Delete handles DELETE /meetings/:id/notes/:noteId
// @Summary      Delete a note
// @Tags         Notes
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Meeting ID"
// @Param        noteId  path      string  true  "Note ID"
// @Success      200     {object}  common.MessageResponse
// @Failure      404     {object}  common.ErrorResponse
// @Router       /meetings/{id}/notes/{noteId} [delete]
func (h *Notes) Delete(c echo.Context) error {
	meetingID, noteID := c.Param("id"), c.Param("noteId")
	if err := h.svc.Delete(c.Request().Context(), meetingID, noteID); err != nil {
		return HandleError(h.logger, c, h.noteError(err, meetingID, noteID))
	}
	return HandleSuccess(h.logger, c, common.MessageResponse{Message: "Note deleted"})
}
