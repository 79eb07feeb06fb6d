package emotionService

import (
	"context"
	"sync"
	"time"

	"EmotionDetection/internal/api/emotion"
	"EmotionDetection/internal/entity"
	"EmotionDetection/pkg/redis"
	"EmotionDetection/pkg/vision"
	"github.com/sirupsen/logrus"
)

type IEmotionService interface {
	DetectEmotions(ctx context.Context, source emotion.FrameSource, image []byte) ([]entity.EmotionResult, error)
	StreamFrames(ctx context.Context, emit func(jpeg []byte) error) error
	CameraReady() bool
	DetectorName() string
	Close()
}

type Options struct {
	JPEGQuality int
	RetryDelay  time.Duration
}

type emotionService struct {
	log        *logrus.Logger
	camera     vision.ICamera
	locator    vision.IFaceLocator
	classifier vision.IEmotionClassifier
	publisher  redis.IRedis

	// gocv.Net is not goroutine safe; every locate+classify pass holds this.
	pipelineMu sync.Mutex

	jpegQuality int
	retryDelay  time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// NewEmotionService wires the pipeline. camera may be nil, in which case
// streaming is unavailable.
func NewEmotionService(
	log *logrus.Logger,
	camera vision.ICamera,
	locator vision.IFaceLocator,
	classifier vision.IEmotionClassifier,
	publisher redis.IRedis,
	opts Options,
) IEmotionService {
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = vision.DefaultJPEGQuality
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}

	return &emotionService{
		log:         log,
		camera:      camera,
		locator:     locator,
		classifier:  classifier,
		publisher:   publisher,
		jpegQuality: opts.JPEGQuality,
		retryDelay:  opts.RetryDelay,
		done:        make(chan struct{}),
	}
}

func (s *emotionService) CameraReady() bool {
	return s.camera != nil && s.camera.IsOpened()
}

func (s *emotionService) DetectorName() string {
	return s.locator.Name()
}

// Close ends every running stream. Model and camera handles are owned by the
// caller.
func (s *emotionService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
