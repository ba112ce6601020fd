package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrDeviceNotFound is returned when a device id references no record.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrDeviceTaken is returned when a checkout hits a device that already has a holder.
	ErrDeviceTaken = errors.New("device is already taken")
	// ErrDeviceNameRequired is returned when a device is created or updated without a name.
	ErrDeviceNameRequired = errors.New("device name is required")
	// ErrUserIDRequired is returned when a checkout arrives without a user id.
	ErrUserIDRequired = errors.New("user id is required")
	// ErrEmailTaken is returned when a registration reuses an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrImageNotFound is returned when a device has no image attached.
	ErrImageNotFound = errors.New("device image not found")
	// ErrImageStore is returned when the image backing store fails to read or write.
	ErrImageStore = errors.New("image storage failure")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything outside the
// taxonomy collapses to a 500 so storage driver detail never reaches callers.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrDeviceNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "DEVICE_NOT_FOUND")
	case errors.Is(err, ErrImageNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "IMAGE_NOT_FOUND")
	case errors.Is(err, ErrDeviceTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "DEVICE_TAKEN")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrDeviceNameRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "DEVICE_NAME_REQUIRED")
	case errors.Is(err, ErrUserIDRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "USER_ID_REQUIRED")
	case errors.Is(err, ErrImageStore):
		return NewHTTPError(http.StatusInternalServerError, "image storage failure", "IO_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
