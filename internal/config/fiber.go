package config

import (
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// multipart overhead on top of the image itself
const bodyLimitSlack = 1024 * 1024

func NewFiber(logger *logrus.Logger, cfg *AppConfig) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:               "Emotion Detection",
			BodyLimit:             int(cfg.MaxUploadSize) + bodyLimitSlack,
			DisableKeepalive:      false,
			StrictRouting:         true,
			CaseSensitive:         true,
			EnablePrintRoutes:     cfg.Env != "production",
			DisableStartupMessage: cfg.Env == "test",
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
		})

	logger.Debugf("Fiber configured with body limit of %d bytes", app.Config().BodyLimit)

	return app
}
