package handler

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"knot-api/internal/config"
	"knot-api/internal/domain/entity"
	"knot-api/internal/usecase"
)

type LinkedInHandler struct {
	usecase  usecase.CallbackUsecase
	config   *config.Config
	pages    *Pages
	redactor logRedactor
	logger   *zap.Logger
}

func NewLinkedInHandler(usecase usecase.CallbackUsecase, cfg *config.Config, pages *Pages, logger *zap.Logger) *LinkedInHandler {
	return &LinkedInHandler{
		usecase:  usecase,
		config:   cfg,
		pages:    pages,
		redactor: logRedactor{enabled: cfg.Logging.RedactSecrets},
		logger:   logger,
	}
}

// Callback godoc
// @Summary LinkedIn OAuth callback
// @Description Receives the authorization code from LinkedIn and forwards it to the Knot app.
//
//	Native clients are redirected to the knot:// deep link, browsers get a page that
//	redirects to the Flutter web app. The code is never exchanged here.
//
// @Tags oauth
// @Param code query string false "Authorization code"
// @Param state query string false "Opaque state echoed back to the app"
// @Param error query string false "Error reported by LinkedIn"
// @Success 302 "Redirect to deep link or web app"
// @Success 200 "HTML page redirecting to the web app"
// @Failure 400 "HTML diagnostic page"
// @Router /linkedin-callback [get]
func (h *LinkedInHandler) Callback(c *fiber.Ctx) error {
	rawQuery := string(c.Request().URI().QueryString())
	fullURL := c.BaseURL() + c.OriginalURL()
	queryParams := queryParamMap(c)

	logURL := fullURL
	logQuery := rawQuery
	if h.redactor.enabled {
		logURL = c.BaseURL() + c.Path()
		logQuery = ""
	}

	h.logger.Info("LinkedIn callback received",
		zap.String("url", logURL),
		zap.String("query", logQuery),
		zap.Any("query_params", h.redactor.params(queryParams)),
		zap.Any("headers", h.redactor.headers(c.GetReqHeaders())),
	)

	params := entity.CallbackParams{
		Code:  c.Query("code"),
		State: c.Query("state"),
		Error: c.Query("error"),
	}

	// Second opinion from the raw query string when the parsed args had no code
	if params.Code == "" && rawQuery != "" {
		params = mergeRawQuery(params, rawQuery)
		h.logger.Info("Parsed from query string",
			zap.String("code", h.redactor.param("code", params.Code)),
			zap.String("error", params.Error),
			zap.String("state", h.redactor.param("state", params.State)),
		)
	}

	client := h.usecase.ClassifyClient(c.Get(fiber.HeaderUserAgent), c.Get(fiber.HeaderReferer))

	h.logger.Info("Resolving LinkedIn callback",
		zap.String("code", h.redactor.param("code", params.Code)),
		zap.String("state", h.redactor.param("state", params.State)),
		zap.String("error", params.Error),
		zap.Bool("is_web", client.IsWeb),
	)

	outcome := h.usecase.Resolve(params, client)

	switch outcome.Kind {
	case entity.OutcomeRedirect:
		return c.Redirect(outcome.Target, h.config.Callback.RedirectStatus)

	case entity.OutcomeWebPage:
		return h.pages.render(c, fiber.StatusOK, pageOAuthSuccess, successPage{
			RedirectURL: outcome.Target,
			Delay:       h.config.Callback.PageDelay,
			DelayMillis: h.config.Callback.PageDelay * 1000,
		})

	default:
		missing := entity.NewMissingAuthCodeError(map[string]any{
			"query_params": len(queryParams),
		})
		h.logger.Warn("LinkedIn callback without authorization code", zap.Error(missing))

		return h.pages.render(c, fiber.StatusBadRequest, pageOAuthError, errorPage{
			Message:     missing.Message,
			QueryParams: sortedParams(queryParams),
			FullURL:     fullURL,
			Error:       params.Error,
			State:       params.State,
			ReturnURL:   outcome.ReturnURL,
		})
	}
}

// queryParamMap collects the query args, keeping the first value of repeated keys
// as c.Query does.
func queryParamMap(c *fiber.Ctx) map[string]string {
	params := make(map[string]string)
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		if _, exists := params[string(key)]; !exists {
			params[string(key)] = string(value)
		}
	})
	return params
}

// mergeRawQuery re-parses the raw query string. Non-empty values found there
// replace the ones already decoded.
func mergeRawQuery(params entity.CallbackParams, rawQuery string) entity.CallbackParams {
	// ParseQuery keeps the pairs it could decode alongside the first error
	values, _ := url.ParseQuery(rawQuery)

	if code := values.Get("code"); code != "" {
		params.Code = code
	}
	if providerError := values.Get("error"); providerError != "" {
		params.Error = providerError
	}
	if state := values.Get("state"); state != "" {
		params.State = state
	}

	return params
}
