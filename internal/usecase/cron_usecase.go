package usecase

import (
	"context"

	"go.uber.org/zap"
)

// CronUsecase backs the endpoints an external scheduler calls every 15 minutes.
type CronUsecase interface {
	UpdateRelationshipHealth(ctx context.Context) error
	CheckUpcomingMeetings(ctx context.Context) error
}

type cronUsecase struct {
	logger *zap.Logger
}

func NewCronUsecase(logger *zap.Logger) CronUsecase {
	return &cronUsecase{
		logger: logger,
	}
}

func (u *cronUsecase) UpdateRelationshipHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.logger.Info("Updating relationship health for all users")
	return nil
}

func (u *cronUsecase) CheckUpcomingMeetings(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.logger.Info("Checking upcoming meetings")
	return nil
}
