package errors

import (
	"net/http"

	"github.com/opamenu/om-order/pkg/status"
)

// AppError carries the HTTP status code and the application status string
// alongside the user-facing message.
type AppError struct {
	HTTPStatusCode int
	Status         string
	Message        string
}

func (e *AppError) Error() string {
	return e.Message
}

func New(httpStatusCode int, appStatus string, message string) error {
	return &AppError{
		HTTPStatusCode: httpStatusCode,
		Status:         appStatus,
		Message:        message,
	}
}

// Destruct unwraps err into an AppError. Unknown error types collapse into an
// internal server error so handlers never leak raw error strings.
func Destruct(err error) *AppError {
	if ae, ok := err.(*AppError); ok {
		return ae
	}

	return &AppError{
		HTTPStatusCode: http.StatusInternalServerError,
		Status:         status.INTERNAL_SERVER_ERROR,
		Message:        "an unexpected error occurred",
	}
}
