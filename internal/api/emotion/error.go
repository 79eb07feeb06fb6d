package emotion

import (
	"EmotionDetection/pkg/response"
	"errors"
	"net/http"
)

var (
	ErrNoImageProvided = response.NewError(http.StatusBadRequest, "No image provided")
	ErrImageTooLarge   = response.NewError(http.StatusRequestEntityTooLarge, "Image too large")
	ErrCameraNotReady  = response.NewError(http.StatusServiceUnavailable, "Camera not available")

	// ErrProcessingFailed matches every ProcessingError.
	ErrProcessingFailed = errors.New("processing failed")
)

// ProcessingError wraps a decode or inference failure. Its message is the
// cause's message, which is what callers get back.
type ProcessingError struct {
	Err error
}

func NewProcessingError(err error) error {
	return &ProcessingError{Err: err}
}

func (e *ProcessingError) Error() string {
	return e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessingFailed
}
