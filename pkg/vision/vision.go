// Package vision holds the per-frame building blocks of the emotion pipeline:
// frame sources, face locators, the face preprocessor, the emotion classifier
// and the frame annotator. Frames are BGR gocv.Mat values owned by the caller.
package vision

import (
	"errors"
	"fmt"

	"EmotionDetection/internal/entity"

	"gocv.io/x/gocv"
)

var (
	ErrEmptyFrame          = errors.New("empty frame")
	ErrEmptyCrop           = errors.New("face crop is empty")
	ErrEmptyImage          = errors.New("image data is empty")
	ErrUndecodableImage    = errors.New("image data could not be decoded")
	ErrFrameUnavailable    = errors.New("camera frame unavailable")
	ErrCameraClosed        = errors.New("camera is closed")
	ErrModelNotLoaded      = errors.New("model could not be loaded")
	ErrUnexpectedOutput    = errors.New("unexpected model output shape")
	ErrUnknownFaceDetector = errors.New("unknown face detector backend")
)

// IFaceLocator finds faces in a frame. Implementations are not safe for
// concurrent use.
type IFaceLocator interface {
	Locate(frame gocv.Mat) ([]entity.Detection, error)
	Name() string
	Close() error
}

// IEmotionClassifier labels a preprocessed 48x48 face. Implementations are not
// safe for concurrent use.
type IEmotionClassifier interface {
	Classify(face gocv.Mat) (entity.Emotion, error)
	Close() error
}

// ICamera is a shared frame source. Read is safe for concurrent use.
type ICamera interface {
	Read(dst *gocv.Mat) error
	IsOpened() bool
	Close() error
}

const (
	FaceDetectorYOLO = "yolo"
	FaceDetectorPigo = "pigo"
)

// LocatorConfig selects and tunes a face locator backend.
type LocatorConfig struct {
	Backend string

	YOLOModelPath string
	Confidence    float32
	NMSThreshold  float32

	PigoCascadePath string
	PigoMinQuality  float32
	PigoMinSize     int
	PigoMaxSize     int
}

func NewFaceLocator(cfg LocatorConfig) (IFaceLocator, error) {
	switch cfg.Backend {
	case "", FaceDetectorYOLO:
		return NewYOLOFaceLocator(cfg.YOLOModelPath, cfg.Confidence, cfg.NMSThreshold)
	case FaceDetectorPigo:
		return NewPigoFaceLocator(cfg.PigoCascadePath, cfg.PigoMinQuality, cfg.PigoMinSize, cfg.PigoMaxSize)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFaceDetector, cfg.Backend)
	}
}
