package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig is loaded from the environment. Each koanf tag is the lower-cased
// name of the variable that sets it.
type AppConfig struct {
	Port           string  `koanf:"app_port" validate:"required,numeric"`
	Env            string  `koanf:"app_env"`
	MaxConnections int     `koanf:"max_connections" validate:"min=1"`
	MaxUploadSize  int64   `koanf:"max_upload_size" validate:"gt=0"`
	RateLimit      float64 `koanf:"rate_limit" validate:"gt=0"`
	RateBurst      int     `koanf:"rate_burst" validate:"min=1"`
	CORSOrigins    string  `koanf:"cors_allow_origins" validate:"required"`

	CameraEnabled    bool          `koanf:"camera_enabled"`
	CameraDevice     string        `koanf:"camera_device" validate:"required_if=CameraEnabled true"`
	CameraRetryDelay time.Duration `koanf:"camera_retry_delay" validate:"min=0"`
	JPEGQuality      int           `koanf:"jpeg_quality" validate:"min=1,max=100"`

	FaceDetector     string  `koanf:"face_detector" validate:"oneof=yolo pigo"`
	YOLOModelPath    string  `koanf:"yolo_model_path" validate:"required_if=FaceDetector yolo"`
	FaceConfidence   float32 `koanf:"face_confidence" validate:"gt=0,lte=1"`
	FaceNMSThreshold float32 `koanf:"face_nms_threshold" validate:"gt=0,lte=1"`
	PigoCascadePath  string  `koanf:"pigo_cascade_path" validate:"required_if=FaceDetector pigo"`
	PigoMinQuality   float32 `koanf:"pigo_min_quality" validate:"min=0"`
	PigoMinSize      int     `koanf:"pigo_min_size" validate:"min=1"`
	PigoMaxSize      int     `koanf:"pigo_max_size" validate:"gtfield=PigoMinSize"`

	EmotionModelPath string `koanf:"emotion_model_path" validate:"required"`

	RedisAddress  string `koanf:"redis_address"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`
	RedisChannel  string `koanf:"redis_channel"`
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:             "3000",
		Env:              "development",
		MaxConnections:   64,
		MaxUploadSize:    10 * 1024 * 1024,
		RateLimit:        10,
		RateBurst:        20,
		CORSOrigins:      "*",
		CameraEnabled:    true,
		CameraDevice:     "0",
		CameraRetryDelay: 10 * time.Millisecond,
		JPEGQuality:      95,
		FaceDetector:     "yolo",
		YOLOModelPath:    "yolov8n-face.onnx",
		FaceConfidence:   0.25,
		FaceNMSThreshold: 0.7,
		PigoCascadePath:  "facefinder",
		PigoMinQuality:   5,
		PigoMinSize:      20,
		PigoMaxSize:      1000,
		EmotionModelPath: "emotion_detection_model.onnx",
		RedisChannel:     "emotions",
	}
}

// LoadAppConfig layers the environment over the defaults and validates the
// result. Variables set to an empty string keep their default.
func LoadAppConfig(validate *validator.Validate) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultAppConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransformFunc(k)), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	cfg.FaceDetector = strings.ToLower(cfg.FaceDetector)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envTransformFunc keeps only variables that name a known key and carry a
// non-blank value.
func envTransformFunc(k *koanf.Koanf) func(string, string) (string, interface{}) {
	return func(key, value string) (string, interface{}) {
		key = strings.ToLower(key)
		value = strings.TrimSpace(value)
		if value == "" || !k.Exists(key) {
			return "", nil
		}
		return key, value
	}
}
