package usecase

import "go.uber.org/fx"

var Module = fx.Module("usecase",
	fx.Provide(NewCallbackUsecase),
	fx.Provide(NewEmailUsecase),
	fx.Provide(NewCronUsecase),
)
