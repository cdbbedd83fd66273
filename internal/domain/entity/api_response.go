package entity

// AckResponse is the static acknowledgement returned by webhook and cron endpoints.
type AckResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse mirrors the {"detail": ...} body clients of the relay already parse.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// ServiceInfo is returned from the root route.
type ServiceInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

func NewAckResponse(message string) *AckResponse {
	return &AckResponse{
		Status:  "success",
		Message: message,
	}
}

func NewErrorResponse(code string, detail string) *ErrorResponse {
	return &ErrorResponse{
		Detail: detail,
		Code:   code,
	}
}
