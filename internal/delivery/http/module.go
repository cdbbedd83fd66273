package http

import (
	"go.uber.org/fx"

	"knot-api/internal/delivery/http/handler"
	"knot-api/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewPages,
		handler.NewHealthHandler,
		handler.NewLinkedInHandler,
		handler.NewWebhookHandler,
		handler.NewCronHandler,
		router.NewRouter,
	),
)
