package entity

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by every error the relay renders.
const (
	ErrCodeInvalidPayload     = "INVALID_PAYLOAD"
	ErrCodeUpstreamOAuth      = "UPSTREAM_OAUTH_ERROR"
	ErrCodeMissingAuthCode    = "MISSING_AUTHORIZATION_CODE"
	ErrCodeUnhandledException = "UNHANDLED_EXCEPTION"
	ErrCodeRouteNotFound      = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	DetailInvalidEmailFormat  = "Invalid email format"
	DetailNoAuthorizationCode = "No authorization code received"
)

func NewInvalidPayloadError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrCodeInvalidPayload)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// NewUpstreamOAuthError records an error reported by the OAuth provider. It is
// forwarded to the client, never rendered as a failure response.
func NewUpstreamOAuthError(providerError string) *goerrors.Error {
	return goerrors.New(providerError, goerrors.CategoryExternal).
		WithCode(http.StatusFound).
		WithTextCode(ErrCodeUpstreamOAuth).
		WithMetadata(map[string]any{"error": providerError})
}

func NewMissingAuthCodeError(metadata map[string]any) *goerrors.Error {
	err := goerrors.New(DetailNoAuthorizationCode, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrCodeMissingAuthCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// NewUnhandledError wraps an unexpected failure. The source text is kept as
// the message so it reaches the client verbatim.
func NewUnhandledError(source error) *goerrors.Error {
	return goerrors.Wrap(source, goerrors.CategoryInternal, source.Error()).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrCodeUnhandledException)
}

// AsServiceError returns err as a go-errors envelope, wrapping anything
// foreign as an unhandled exception.
func AsServiceError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}
	return NewUnhandledError(err)
}
