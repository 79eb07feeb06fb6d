package handlerUtil

import (
	"EmotionDetection/internal/api/emotion"
	"EmotionDetection/pkg/log"
	"EmotionDetection/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const TraceIDHeader = "X-Trace-ID"

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle writes err as {"error": message}. Errors carrying a status keep it
// and processing failures are reported as 500 with the cause's message.
// Anything else gets a generic 500 with its trace id in X-Trace-ID.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	if code, msg, ok := response.StatusOf(err); ok {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(code).JSON(emotion.ErrorResponse{Error: msg})
	}

	if errors.Is(err, emotion.ErrProcessingFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Emotion processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(emotion.ErrorResponse{Error: err.Error()})
	}

	traceID := log.ErrorWithTraceID(log.Fields{
		log.RequestIDKey: requestID,
		"error":          err.Error(),
		"path":           path,
		"operation":      operation,
	}, "Unexpected error")
	c.Set(TraceIDHeader, traceID)

	return c.Status(fiber.StatusInternalServerError).JSON(emotion.ErrorResponse{
		Error: "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
