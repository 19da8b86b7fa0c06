package handler

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	invitationDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/invitation"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/http/middleware"
)

// InvitationService manages meeting invitations
type InvitationService interface {
	Create(ctx context.Context, organizerID uuid.UUID, eventID, inviteeEmail string) (*entities.Invitation, error)
	Accept(ctx context.Context, id uuid.UUID, invitee *entities.User) (*entities.Invitation, error)
	Decline(ctx context.Context, id uuid.UUID, invitee *entities.User) (*entities.Invitation, error)
	Pending(ctx context.Context, email string) ([]*entities.Invitation, error)
	Accepted(ctx context.Context, inviteeID string) ([]*entities.Invitation, error)
}

// Invitation handles invitation requests
type Invitation struct {
	svc    InvitationService
	logger *zap.Logger
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(svc InvitationService, logger *zap.Logger) *Invitation {
	return &Invitation{svc: svc, logger: logger}
}

// Create handles POST /invitations
// @Summary      Invite someone to a meeting
// @Tags         Invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      invitationDTO.CreateInvitationRequest  true  "Invitation"
// @Success      200      {object}  entities.Invitation
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse  "Not the meeting owner"
// @Failure      404      {object}  common.ErrorResponse
// @Router       /invitations [post]
func (h *Invitation) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req invitationDTO.CreateInvitationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	inv, err := h.svc.Create(c.Request().Context(), userID, req.EventID, req.Email)
	if err != nil {
		return HandleError(h.logger, c, orElse(err, req.EventID, func(err error) errors.AppError {
			return errors.ErrPersistenceFailed("invitation", err)
		}))
	}
	return HandleSuccess(h.logger, c, inv)
}

// Pending handles GET /invitations/pending
// @Summary      Pending invitations for my email
// @Tags         Invitations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entities.Invitation
// @Router       /invitations/pending [get]
func (h *Invitation) Pending(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok || user == nil {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	invs, err := h.svc.Pending(c.Request().Context(), user.Email)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("pending invitations", err))
	}
	return HandleSuccess(h.logger, c, invs)
}

// Accepted handles GET /invitations/accepted
// @Summary      Invitations I accepted
// @Tags         Invitations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entities.Invitation
// @Router       /invitations/accepted [get]
func (h *Invitation) Accepted(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	invs, err := h.svc.Accepted(c.Request().Context(), userID.String())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("accepted invitations", err))
	}
	return HandleSuccess(h.logger, c, invs)
}

// Accept handles POST /invitations/:id/accept
// @Summary      Accept an invitation
// @Tags         Invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invitation ID (UUID)"
// @Success      200  {object}  entities.Invitation
// @Failure      403  {object}  common.ErrorResponse  "Invitation addressed to another email"
// @Failure      404  {object}  common.ErrorResponse
// @Router       /invitations/{id}/accept [post]
func (h *Invitation) Accept(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok || user == nil {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invitation id must be a valid UUID"))
	}

	inv, err := h.svc.Accept(c.Request().Context(), id, user)
	if err != nil {
		return HandleError(h.logger, c, h.invitationError(err, id))
	}
	return HandleSuccess(h.logger, c, inv)
}

// Decline handles POST /invitations/:id/decline
// @Summary      Decline an invitation
// @Tags         Invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invitation ID (UUID)"
// @Success      200  {object}  entities.Invitation
// @Failure      403  {object}  common.ErrorResponse  "Invitation addressed to another email"
// @Failure      404  {object}  common.ErrorResponse
// @Router       /invitations/{id}/decline [post]
func (h *Invitation) Decline(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok || user == nil {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invitation id must be a valid UUID"))
	}

	inv, err := h.svc.Decline(c.Request().Context(), id, user)
	if err != nil {
		return HandleError(h.logger, c, h.invitationError(err, id))
	}
	return HandleSuccess(h.logger, c, inv)
}

func (h *Invitation) invitationError(err error, id uuid.UUID) error {
	if stdErrors.Is(err, entities.ErrInvitationNotFound) {
		return errors.ErrInvitationNotFound(id.String())
	}
	return orElse(err, "", func(err error) errors.AppError {
		return errors.ErrPersistenceFailed("invitation", err)
	})
}
