package emotionHandler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"EmotionDetection/internal/api/emotion"
	contextPkg "EmotionDetection/pkg/context"
	"EmotionDetection/pkg/handlerUtil"
	"EmotionDetection/pkg/log"
	"EmotionDetection/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	mjpegBoundary     = "frame"
	detectTimeout     = 30 * time.Second
	wsReadTimeout     = 60 * time.Second
	wsWriteTimeout    = 10 * time.Second
	wsControlDeadline = 5 * time.Second
)

// DetectEmotion classifies every face in the uploaded "image" form file.
func (h *EmotionHandler) DetectEmotion(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), detectTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing emotion detection request")

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.Handle(ctx, requestID, emotion.ErrNoImageProvided, ctx.Path(), "form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	data, err := h.utils.ReadImageFile(file)
	if err != nil {
		if errors.Is(err, utils.ErrFileTooLarge) {
			return errHandler.Handle(ctx, requestID, emotion.ErrImageTooLarge, ctx.Path(), "read_image_file")
		}
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image_file")
	}

	results, err := h.emotionService.DetectEmotions(c, emotion.SourceUpload, data)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_emotions")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"faces":      len(results),
	}).Info("Emotion detection completed")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, emotion.DetectEmotionResponse{
		Emotions: results,
	})
}

// VideoFeed streams annotated camera frames as multipart/x-mixed-replace
// until the client goes away or the server shuts down.
func (h *EmotionHandler) VideoFeed(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	if !h.emotionService.CameraReady() {
		return handlerUtil.New(h.log).Handle(ctx, requestID, emotion.ErrCameraNotReady, ctx.Path(), "video_feed")
	}

	streamCtx := contextPkg.FromFiberCtx(ctx)

	ctx.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary="+mjpegBoundary)
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	h.log.WithField("request_id", requestID).Info("Video feed client connected")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		streamCtx, cancel := context.WithCancel(streamCtx)
		defer cancel()

		err := h.emotionService.StreamFrames(streamCtx, func(jpeg []byte) error {
			return WriteMJPEGPart(w, jpeg)
		})
		if err != nil {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Debug("Video feed ended")
		}

		h.log.WithField("request_id", requestID).Info("Video feed client disconnected")
	})

	return nil
}

// WriteMJPEGPart writes one multipart part holding a JPEG and flushes it.
func WriteMJPEGPart(w *bufio.Writer, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", mjpegBoundary); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}
	return w.Flush()
}

func (h *EmotionHandler) Health(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(emotion.HealthResponse{
		Message:  "Server is Healthy!",
		Camera:   h.emotionService.CameraReady(),
		Detector: h.emotionService.DetectorName(),
	})
}

// handleEmotionWebSocket answers each binary image message with the
// detections for that image.
func (h *EmotionHandler) handleEmotionWebSocket(c *websocket.Conn) {
	h.log.Info("Emotion detection WebSocket client connected")
	defer h.log.Info("Emotion detection WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(wsControlDeadline)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Emotion WebSocket error: %v", err)
			} else {
				h.log.Info("Emotion WebSocket connection closed")
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var reply interface{}
		ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
		results, err := h.emotionService.DetectEmotions(ctx, emotion.SourceWebSocket, message)
		cancel()
		if err != nil {
			h.log.Errorf("Error processing WebSocket frame: %v", err)
			reply = emotion.ErrorResponse{Error: err.Error()}
		} else {
			reply = emotion.DetectEmotionResponse{Emotions: results}
		}

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}

		if err := c.SetWriteDeadline(time.Time{}); err != nil {
			h.log.Errorf("Error resetting write deadline: %v", err)
			break
		}
	}
}
