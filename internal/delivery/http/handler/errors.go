package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"knot-api/internal/domain/entity"
)

// WriteError renders err as {"detail": ..., "code": ...} with the status the
// error carries. Foreign errors become 500 with their raw text.
func WriteError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(
			entity.NewErrorResponse(fiberTextCode(fiberErr.Code), fiberErr.Message),
		)
	}

	rich := entity.AsServiceError(err)
	status := rich.Code
	if status < fiber.StatusBadRequest {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(
		entity.NewErrorResponse(rich.TextCode, rich.Message),
	)
}

func fiberTextCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return entity.ErrCodeRouteNotFound
	case fiber.StatusMethodNotAllowed:
		return entity.ErrCodeMethodNotAllowed
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		return entity.ErrCodeInvalidPayload
	default:
		return entity.ErrCodeUnhandledException
	}
}
