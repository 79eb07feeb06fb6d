package emotionService

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EmotionDetection/internal/api/emotion"
	"EmotionDetection/internal/entity"
	"EmotionDetection/pkg/log"
	"EmotionDetection/pkg/vision"
	"gocv.io/x/gocv"
)

func (s *emotionService) DetectEmotions(ctx context.Context, source emotion.FrameSource, image []byte) ([]entity.EmotionResult, error) {
	frame, err := vision.DecodeImage(image)
	if err != nil {
		return nil, emotion.NewProcessingError(err)
	}
	defer frame.Close()

	results, err := s.detectFrame(frame)
	if err != nil {
		return nil, emotion.NewProcessingError(err)
	}

	log.WithRequestID(ctx).WithFields(log.Fields{
		"source": source,
		"width":  frame.Cols(),
		"height": frame.Rows(),
		"faces":  len(results),
	}).Debug("Emotion detection finished")

	s.publish(ctx, source, results)

	return results, nil
}

// StreamFrames reads the camera until ctx is done, the service is closed,
// the camera is closed or emit fails. Failed reads are skipped without
// limit. Each emitted frame is annotated and JPEG encoded.
func (s *emotionService) StreamFrames(ctx context.Context, emit func(jpeg []byte) error) error {
	if s.camera == nil {
		return emotion.ErrCameraNotReady
	}

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		default:
		}

		if err := s.camera.Read(&frame); err != nil {
			if errors.Is(err, vision.ErrCameraClosed) {
				return err
			}
			s.wait(ctx)
			continue
		}

		results, err := s.detectFrame(frame)
		if err != nil {
			log.WithRequestID(ctx).WithField("error", err.Error()).Warn("Emotion pipeline failed on camera frame")
		} else {
			vision.Annotate(&frame, results)
			if len(results) > 0 {
				s.publish(ctx, emotion.SourceCamera, results)
			}
		}

		jpeg, err := vision.EncodeJPEG(frame, s.jpegQuality)
		if err != nil {
			log.WithRequestID(ctx).WithField("error", err.Error()).Warn("Failed to encode camera frame")
			continue
		}

		if err := emit(jpeg); err != nil {
			return fmt.Errorf("emit frame: %w", err)
		}
	}
}

// detectFrame runs the locator once and classifies every usable detection.
// Boxes outside the frame, zero-area boxes and empty crops are skipped.
func (s *emotionService) detectFrame(frame gocv.Mat) ([]entity.EmotionResult, error) {
	s.pipelineMu.Lock()
	defer s.pipelineMu.Unlock()

	detections, err := s.locator.Locate(frame)
	if err != nil {
		return nil, fmt.Errorf("locate faces: %w", err)
	}

	results := make([]entity.EmotionResult, 0, len(detections))
	for _, d := range detections {
		box, ok := vision.ClipBox(d.Box, frame.Cols(), frame.Rows())
		if !ok {
			continue
		}

		face, err := vision.PreprocessFace(frame, box)
		if err != nil {
			if errors.Is(err, vision.ErrEmptyCrop) {
				continue
			}
			return nil, fmt.Errorf("preprocess face: %w", err)
		}

		label, err := s.classifier.Classify(face)
		face.Close()
		if err != nil {
			return nil, fmt.Errorf("classify face: %w", err)
		}

		results = append(results, entity.EmotionResult{Box: box, Emotion: label})
	}

	return results, nil
}

func (s *emotionService) publish(ctx context.Context, source emotion.FrameSource, results []entity.EmotionResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEmotions(ctx, string(source), results); err != nil {
		log.WithRequestID(ctx).WithField("error", err.Error()).Warn("Failed to publish emotions")
	}
}

func (s *emotionService) wait(ctx context.Context) {
	if s.retryDelay == 0 {
		return
	}

	timer := time.NewTimer(s.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-s.done:
	case <-timer.C:
	}
}
