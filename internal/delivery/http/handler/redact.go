package handler

import "strings"

const redactedValue = "[REDACTED]"

var (
	sensitiveParams  = []string{"code", "state"}
	sensitiveHeaders = []string{"Authorization", "Cookie", "Proxy-Authorization"}
)

// logRedactor masks OAuth secrets before they reach the logs. Disabled, it
// passes everything through.
type logRedactor struct {
	enabled bool
}

func (r logRedactor) param(key, value string) string {
	if !r.enabled || value == "" {
		return value
	}
	for _, sensitive := range sensitiveParams {
		if strings.EqualFold(key, sensitive) {
			return redactedValue
		}
	}
	return value
}

func (r logRedactor) params(params map[string]string) map[string]string {
	if !r.enabled {
		return params
	}
	out := make(map[string]string, len(params))
	for key, value := range params {
		out[key] = r.param(key, value)
	}
	return out
}

func (r logRedactor) headers(headers map[string][]string) map[string][]string {
	if !r.enabled {
		return headers
	}
	out := make(map[string][]string, len(headers))
	for key, values := range headers {
		out[key] = values
		for _, sensitive := range sensitiveHeaders {
			if strings.EqualFold(key, sensitive) {
				out[key] = []string{redactedValue}
				break
			}
		}
	}
	return out
}
