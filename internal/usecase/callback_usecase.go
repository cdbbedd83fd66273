package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"knot-api/internal/config"
	"knot-api/internal/domain/entity"
)

// Substrings that mark a browser user agent. Native HTTP clients send none of them.
var browserMarkers = []string{"chrome", "firefox", "safari", "edge"}

var refererPortPattern = regexp.MustCompile(`:(\d+)`)

type CallbackUsecase interface {
	// ClassifyClient decides whether the callback was opened in a browser
	ClassifyClient(userAgent, referer string) entity.ClientClassification

	// Resolve picks where the authorization result is forwarded
	Resolve(params entity.CallbackParams, client entity.ClientClassification) *entity.CallbackOutcome
}

type callbackUsecase struct {
	config *config.Config
	logger *zap.Logger
}

func NewCallbackUsecase(cfg *config.Config, logger *zap.Logger) CallbackUsecase {
	return &callbackUsecase{
		config: cfg,
		logger: logger,
	}
}

func (u *callbackUsecase) ClassifyClient(userAgent, referer string) entity.ClientClassification {
	ua := strings.ToLower(userAgent)

	isWeb := false
	for _, marker := range browserMarkers {
		if strings.Contains(ua, marker) {
			isWeb = true
			break
		}
	}

	return entity.ClientClassification{
		IsWeb:   isWeb,
		Referer: referer,
	}
}

func (u *callbackUsecase) Resolve(params entity.CallbackParams, client entity.ClientClassification) *entity.CallbackOutcome {
	outcome := &entity.CallbackOutcome{
		Params: params,
		Client: client,
	}

	// Provider errors go back to the app, even when a code came along
	if params.Error != "" {
		u.logger.Warn("LinkedIn returned an OAuth error",
			zap.Error(entity.NewUpstreamOAuthError(params.Error)),
			zap.Bool("is_web", client.IsWeb),
		)

		query := "error=" + params.Error
		outcome.Kind = entity.OutcomeRedirect
		if client.IsWeb {
			outcome.Target = u.webURL(client.Referer, query)
		} else {
			outcome.Target = u.deepLink(query)
		}
		return outcome
	}

	if params.Code == "" {
		outcome.Kind = entity.OutcomeMissingCode
		outcome.ReturnURL = u.webURL(client.Referer, "")
		return outcome
	}

	// Values are forwarded exactly as decoded; the app parses them itself
	query := "code=" + params.Code + "&state=" + params.State
	if client.IsWeb {
		outcome.Kind = entity.OutcomeWebPage
		outcome.Target = u.webURL(client.Referer, query)
	} else {
		outcome.Kind = entity.OutcomeRedirect
		outcome.Target = u.deepLink(query)
	}

	return outcome
}

func (u *callbackUsecase) deepLink(query string) string {
	return fmt.Sprintf("%s://%s?%s",
		u.config.Callback.DeepLinkScheme,
		u.config.Callback.DeepLinkHost,
		query,
	)
}

func (u *callbackUsecase) webURL(referer, query string) string {
	base := fmt.Sprintf("http://%s:%s%s",
		u.config.Callback.WebHost,
		u.webPort(referer),
		u.config.Callback.WebPath,
	)
	if query == "" {
		return base
	}
	return base + "?" + query
}

// webPort uses the first ":<digits>" in the Referer, so a Flutter dev server on
// a random port gets the result back on that same port.
func (u *callbackUsecase) webPort(referer string) string {
	if referer != "" {
		if match := refererPortPattern.FindStringSubmatch(referer); match != nil {
			return match[1]
		}
	}
	return u.config.Callback.WebDefaultPort
}
