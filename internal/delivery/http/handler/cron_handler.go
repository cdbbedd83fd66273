package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"knot-api/internal/domain/entity"
	"knot-api/internal/usecase"
)

// CronHandler exposes the jobs an external scheduler triggers.
type CronHandler struct {
	usecase usecase.CronUsecase
	logger  *zap.Logger
}

func NewCronHandler(usecase usecase.CronUsecase, logger *zap.Logger) *CronHandler {
	return &CronHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// UpdateHealth godoc
// @Summary Update relationship health
// @Tags cron
// @Produce json
// @Success 200 {object} entity.AckResponse
// @Failure 500 {object} entity.ErrorResponse
// @Router /cron/update-health [post]
func (h *CronHandler) UpdateHealth(c *fiber.Ctx) error {
	if err := h.usecase.UpdateRelationshipHealth(c.UserContext()); err != nil {
		h.logger.Error("Error updating relationship health", zap.Error(err))
		return WriteError(c, err)
	}
	return c.JSON(entity.NewAckResponse(""))
}

// CheckMeetings godoc
// @Summary Check upcoming meetings
// @Tags cron
// @Produce json
// @Success 200 {object} entity.AckResponse
// @Failure 500 {object} entity.ErrorResponse
// @Router /cron/check-meetings [post]
func (h *CronHandler) CheckMeetings(c *fiber.Ctx) error {
	if err := h.usecase.CheckUpcomingMeetings(c.UserContext()); err != nil {
		h.logger.Error("Error checking meetings", zap.Error(err))
		return WriteError(c, err)
	}
	return c.JSON(entity.NewAckResponse(""))
}
