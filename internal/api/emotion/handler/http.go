package emotionHandler

import (
	emotionService "EmotionDetection/internal/api/emotion/service"
	"EmotionDetection/internal/middleware"
	"EmotionDetection/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type EmotionHandler struct {
	log            *logrus.Logger
	middleware     middleware.Middleware
	emotionService emotionService.IEmotionService
	utils          utils.IUtils
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	es emotionService.IEmotionService,
	utils utils.IUtils,
) *EmotionHandler {
	return &EmotionHandler{
		emotionService: es,
		log:            log,
		middleware:     middleware,
		utils:          utils,
	}
}

func (h *EmotionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Get("/video_feed", h.VideoFeed)
	srv.Post("/detect_emotion", h.middleware.NewRateLimiter, h.DetectEmotion)

	srv.Use("/ws", wsMiddleware)
	srv.Get("/ws/detect_emotion", websocket.New(h.handleEmotionWebSocket))

	srv.Get("/health", h.Health)
}
