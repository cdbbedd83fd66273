package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"knot-api/internal/domain/entity"
	"knot-api/internal/infrastructure/mailparse"
	"knot-api/internal/usecase"
)

type WebhookHandler struct {
	usecase usecase.EmailUsecase
	logger  *zap.Logger
}

func NewWebhookHandler(usecase usecase.EmailUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// InboundEmail godoc
// @Summary Inbound email webhook
// @Description Receives emails BCC'd to a user's capture address, as posted by SendGrid or Mailgun.
//
//	Accepts JSON or form payloads with to, from, subject, text, html and headers.
//
// @Tags webhook
// @Accept json
// @Accept x-www-form-urlencoded
// @Accept mpfd
// @Produce json
// @Param payload body entity.EmailWebhookPayload true "Email payload"
// @Success 200 {object} entity.AckResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 500 {object} entity.ErrorResponse
// @Router /webhook/email [post]
func (h *WebhookHandler) InboundEmail(c *fiber.Ctx) error {
	ctx := c.UserContext()

	contentType := string(c.Request().Header.ContentType())
	h.logger.Debug("Received email webhook",
		zap.String("content_type", contentType),
		zap.Int("body_size", len(c.Body())),
	)

	payload, err := h.decodePayload(c, contentType)
	if err != nil {
		h.logger.Error("Error processing email webhook", zap.Error(err))
		return WriteError(c, entity.NewUnhandledError(err))
	}

	if _, err := h.usecase.ProcessInboundEmail(ctx, payload); err != nil {
		h.logger.Error("Error processing email webhook", zap.Error(err))
		return WriteError(c, err)
	}

	return c.JSON(entity.NewAckResponse("Email processed"))
}

// decodePayload reads form posts field by field; any other body is treated as
// JSON whatever its content type.
func (h *WebhookHandler) decodePayload(c *fiber.Ctx, contentType string) (*entity.EmailWebhookPayload, error) {
	contentType = strings.ToLower(contentType)
	if strings.HasPrefix(contentType, fiber.MIMEApplicationForm) || strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return mailparse.FromForm(func(key string) string {
			return c.FormValue(key)
		})
	}
	return mailparse.DecodeJSON(c.Body())
}
