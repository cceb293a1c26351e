package errors

import "net/http"

// HttpError carries the status code a handler should answer with. Usecases
// construct these so the handler layer can map domain outcomes to responses
// without inspecting error strings.
type HttpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *HttpError) Error() string {
	return e.Message
}

func BadRequest(message string) error {
	return &HttpError{Code: http.StatusBadRequest, Message: message}
}

func UnauthorizedError(message string) error {
	return &HttpError{Code: http.StatusUnauthorized, Message: message}
}

func ForbiddenError(message string) error {
	return &HttpError{Code: http.StatusForbidden, Message: message}
}

func NotFoundError(message string) error {
	return &HttpError{Code: http.StatusNotFound, Message: message}
}

func Conflict(message string) error {
	return &HttpError{Code: http.StatusConflict, Message: message}
}

func UnprocessableEntity(message string) error {
	return &HttpError{Code: http.StatusUnprocessableEntity, Message: message}
}

func InternalServerError(message string) error {
	return &HttpError{Code: http.StatusInternalServerError, Message: message}
}

// ServiceUnavailable marks a transient storage or collaborator fault that
// survived retries. Distinct from user-correctable 4xx outcomes.
func ServiceUnavailable(message string) error {
	return &HttpError{Code: http.StatusServiceUnavailable, Message: message}
}

// ErrorCode returns the embedded status code, or 500 for plain errors.
func ErrorCode(err error) int {
	if he, ok := err.(*HttpError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}
