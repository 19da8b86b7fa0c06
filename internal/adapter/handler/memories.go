package handler

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/memories"
)

// MemorySearcher searches past meetings
type MemorySearcher interface {
	Search(ctx context.Context, userID uuid.UUID, text string) ([]memories.Memory, error)
}

// Memories handles the past meeting search
type Memories struct {
	svc    MemorySearcher
	logger *zap.Logger
}

// NewMemoriesHandler creates a new memories handler
func NewMemoriesHandler(svc MemorySearcher, logger *zap.Logger) *Memories {
	return &Memories{svc: svc, logger: logger}
}

// Search handles GET /memories
// @Summary      Search past meetings
// @Description  Full-text search over titles, summaries and transcripts of my meetings
// @Tags         Memories
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  true  "Search text"
// @Success      200  {array}   dto.MemoryResponse
// @Failure      400  {object}  common.ErrorResponse
// @Failure      500  {object}  common.ErrorResponse
// @Router       /memories [get]
func (h *Memories) Search(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("q is required"))
	}

	results, err := h.svc.Search(c.Request().Context(), userID, q)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrSearchFailed(err))
	}
	return HandleSuccess(h.logger, c, presenter.ToMemoryResponses(results))
}
