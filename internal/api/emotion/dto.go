package emotion

import "EmotionDetection/internal/entity"

type DetectEmotionResponse struct {
	Emotions []entity.EmotionResult `json:"emotions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Message  string `json:"message"`
	Camera   bool   `json:"camera"`
	Detector string `json:"detector"`
}

// FrameSource tags where a frame came from in published results and logs.
type FrameSource string

const (
	SourceCamera    FrameSource = "camera"
	SourceUpload    FrameSource = "upload"
	SourceWebSocket FrameSource = "websocket"
)
