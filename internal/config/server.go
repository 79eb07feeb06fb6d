package config

import (
	emotionHandler "EmotionDetection/internal/api/emotion/handler"
	emotionService "EmotionDetection/internal/api/emotion/service"
	"EmotionDetection/internal/middleware"
	"EmotionDetection/pkg/redis"
	"EmotionDetection/pkg/utils"
	"EmotionDetection/pkg/vision"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
)

const shutdownTimeout = 10 * time.Second

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	log            *logrus.Logger
	config         *AppConfig
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	camera         vision.ICamera
	faceLocator    vision.IFaceLocator
	classifier     vision.IEmotionClassifier
	redisServer    redis.IRedis
	emotionService emotionService.IEmotionService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithConfig(cfg *AppConfig) ServerOption {
	return func(s *Server) error {
		s.config = cfg
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		if s.config == nil {
			return fmt.Errorf("config must be set before utils")
		}
		s.utils = utils.New(s.config.MaxUploadSize)
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.utils == nil || s.config == nil {
			return fmt.Errorf("utils and config must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, s.utils, middleware.Config{
			RequestsPerSecond: s.config.RateLimit,
			Burst:             s.config.RateBurst,
		})
		return nil
	}
}

// WithCamera opens the configured capture device. A disabled camera leaves
// the stream unavailable; an enabled camera that cannot be opened is an error.
func WithCamera() ServerOption {
	return func(s *Server) error {
		if s.config == nil {
			return fmt.Errorf("config must be set before camera")
		}
		if !s.config.CameraEnabled {
			if s.log != nil {
				s.log.Warn("Camera disabled, /video_feed will report 503")
			}
			return nil
		}

		camera, err := vision.OpenCamera(s.config.CameraDevice)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to open camera %s: %v", s.config.CameraDevice, err)
			}
			return fmt.Errorf("failed to open camera: %w", err)
		}
		s.camera = camera
		return nil
	}
}

func WithFaceLocator() ServerOption {
	return func(s *Server) error {
		if s.config == nil {
			return fmt.Errorf("config must be set before face locator")
		}

		locator, err := vision.NewFaceLocator(vision.LocatorConfig{
			Backend:         s.config.FaceDetector,
			YOLOModelPath:   s.config.YOLOModelPath,
			Confidence:      s.config.FaceConfidence,
			NMSThreshold:    s.config.FaceNMSThreshold,
			PigoCascadePath: s.config.PigoCascadePath,
			PigoMinQuality:  s.config.PigoMinQuality,
			PigoMinSize:     s.config.PigoMinSize,
			PigoMaxSize:     s.config.PigoMaxSize,
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to load face detector %s: %v", s.config.FaceDetector, err)
			}
			return fmt.Errorf("failed to create face locator: %w", err)
		}
		s.faceLocator = locator
		return nil
	}
}

func WithEmotionClassifier() ServerOption {
	return func(s *Server) error {
		if s.config == nil {
			return fmt.Errorf("config must be set before emotion classifier")
		}

		classifier, err := vision.NewEmotionClassifier(s.config.EmotionModelPath)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to load emotion model %s: %v", s.config.EmotionModelPath, err)
			}
			return fmt.Errorf("failed to create emotion classifier: %w", err)
		}
		s.classifier = classifier
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func (s *Server) RegisterHandler() error {
	if s.faceLocator == nil || s.classifier == nil {
		return fmt.Errorf("face locator and emotion classifier are required")
	}
	if s.middleware == nil || s.utils == nil {
		return fmt.Errorf("middleware and utils are required")
	}
	if s.redisServer == nil {
		s.redisServer = redis.New(s.log, redis.Options{})
	}

	s.engine.Use(recover.New())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins: s.config.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
	}))
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	// Emotion
	s.emotionService = emotionService.NewEmotionService(
		s.log,
		s.camera,
		s.faceLocator,
		s.classifier,
		s.redisServer,
		emotionService.Options{
			JPEGQuality: s.config.JPEGQuality,
			RetryDelay:  s.config.CameraRetryDelay,
		},
	)
	emotionHandlers := emotionHandler.New(s.log, s.middleware, s.emotionService, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, emotionHandlers)

	for _, h := range s.handlers {
		h.Start(s.engine)
	}

	return nil
}

// Run serves until Shutdown. Concurrent connections are capped at
// MaxConnections.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%s", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.config.Port, err)
	}

	s.log.Infof("Listening on :%s (max %d connections)", s.config.Port, s.config.MaxConnections)

	return s.engine.Listener(netutil.LimitListener(ln, s.config.MaxConnections))
}

// Shutdown stops running streams, drains the HTTP server and releases the
// camera, models and publisher.
func (s *Server) Shutdown() error {
	var errs []error

	if s.emotionService != nil {
		s.emotionService.Close()
	}

	if err := s.engine.ShutdownWithTimeout(shutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if s.camera != nil {
		if err := s.camera.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close camera: %w", err))
		}
	}
	if s.faceLocator != nil {
		if err := s.faceLocator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close face locator: %w", err))
		}
	}
	if s.classifier != nil {
		if err := s.classifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close emotion classifier: %w", err))
		}
	}
	if s.redisServer != nil {
		if err := s.redisServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
