package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"knot-api/internal/config"
	"knot-api/internal/delivery/http/handler"
)

// HeaderSkipBrowserWarning tells the ngrok edge not to serve its interstitial page.
const HeaderSkipBrowserWarning = "ngrok-skip-browser-warning"

type Router struct {
	app             *fiber.App
	config          *config.Config
	logger          *zap.Logger
	healthHandler   *handler.HealthHandler
	linkedInHandler *handler.LinkedInHandler
	webhookHandler  *handler.WebhookHandler
	cronHandler     *handler.CronHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	healthHandler *handler.HealthHandler,
	linkedInHandler *handler.LinkedInHandler,
	webhookHandler *handler.WebhookHandler,
	cronHandler *handler.CronHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ErrorHandler:          newErrorHandler(logger),
		DisableStartupMessage: !cfg.IsDevelopment(),
	})

	return &Router{
		app:             app,
		config:          cfg,
		logger:          logger,
		healthHandler:   healthHandler,
		linkedInHandler: linkedInHandler,
		webhookHandler:  webhookHandler,
		cronHandler:     cronHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: r.config.IsDevelopment(),
	}))
	r.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	r.app.Use(skipBrowserWarning)
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.config.CORS.AllowOrigins,
		AllowMethods: r.config.CORS.AllowMethods,
		AllowHeaders: r.config.CORS.AllowHeaders,
	}))

	if r.config.IsDevelopment() {
		r.app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Service identity and health
	r.app.Get("/", r.healthHandler.Root)
	r.app.Get("/health", r.healthHandler.Health)

	// OAuth callback (registered with LinkedIn as the redirect URI)
	r.app.Get("/linkedin-callback", r.linkedInHandler.Callback)

	// Webhook routes
	r.app.Post("/webhook/email", r.webhookHandler.InboundEmail)

	// Cron routes, triggered by an external scheduler
	cron := r.app.Group("/cron")
	{
		cron.Post("/update-health", r.cronHandler.UpdateHealth)
		cron.Post("/check-meetings", r.cronHandler.CheckMeetings)
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

// skipBrowserWarning is set before the chain runs so it survives error
// responses and CORS preflights.
func skipBrowserWarning(c *fiber.Ctx) error {
	c.Set(HeaderSkipBrowserWarning, "true")
	return c.Next()
}

func newErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			logger.Warn("Request rejected", fields...)
		} else {
			logger.Error("Request failed", fields...)
		}

		return handler.WriteError(c, err)
	}
}
