package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"knot-api/internal/domain/entity"
	"knot-api/internal/infrastructure/mailparse"
)

type EmailUsecase interface {
	// ProcessInboundEmail validates a BCC-captured email and extracts the
	// recipient username
	ProcessInboundEmail(ctx context.Context, payload *entity.EmailWebhookPayload) (*entity.InboundEmail, error)
}

type emailUsecase struct {
	logger *zap.Logger
}

func NewEmailUsecase(logger *zap.Logger) EmailUsecase {
	return &emailUsecase{
		logger: logger,
	}
}

func (u *emailUsecase) ProcessInboundEmail(ctx context.Context, payload *entity.EmailWebhookPayload) (*entity.InboundEmail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Username comes from the BCC address, e.g. username@inbound.knot.app
	to := mailparse.BareAddress(payload.To)
	username, _, found := strings.Cut(to, "@")
	if !found || username == "" {
		return nil, entity.NewInvalidPayloadError(entity.DetailInvalidEmailFormat, map[string]any{
			"to": payload.To,
		})
	}

	email := &entity.InboundEmail{
		Username:      username,
		To:            payload.To,
		From:          payload.From,
		SenderAddress: mailparse.BareAddress(payload.From),
		Subject:       payload.Subject,
		Content:       payload.Content(),
		MessageID:     mailparse.MessageID(payload.Headers),
	}

	// Contact matching and interaction records belong to the Knot backend;
	// the relay only acknowledges receipt.
	u.logger.Info("Received email",
		zap.String("from", email.From),
		zap.String("to", email.To),
		zap.String("username", email.Username),
		zap.String("subject", email.Subject),
		zap.String("message_id", email.MessageID),
		zap.Int("content_length", len(email.Content)),
	)

	return email, nil
}
