package emotionHandler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"EmotionDetection/internal/api/emotion"
	"EmotionDetection/internal/entity"
	"EmotionDetection/internal/middleware"
	"EmotionDetection/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Setenv("LOG_LEVEL", "error")
	os.Exit(m.Run())
}

type fakeService struct {
	results     []entity.EmotionResult
	err         error
	failOn      string
	frames      [][]byte
	cameraReady bool
	received    [][]byte
	sources     []emotion.FrameSource
}

func (f *fakeService) DetectEmotions(_ context.Context, source emotion.FrameSource, image []byte) ([]entity.EmotionResult, error) {
	f.received = append(f.received, image)
	f.sources = append(f.sources, source)
	if f.err != nil {
		return nil, f.err
	}
	if f.failOn != "" && string(image) == f.failOn {
		return nil, emotion.NewProcessingError(errors.New("boom"))
	}
	return f.results, nil
}

func (f *fakeService) StreamFrames(_ context.Context, emit func([]byte) error) error {
	for _, frame := range f.frames {
		if err := emit(frame); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeService) CameraReady() bool    { return f.cameraReady }
func (f *fakeService) DetectorName() string { return "fake" }
func (f *fakeService) Close()               {}

func newTestApp(t *testing.T, svc *fakeService, maxUpload int64) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	u := utils.New(maxUpload)
	mw := middleware.New(logger, u, middleware.Config{RequestsPerSecond: 100, Burst: 100})

	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	New(logger, mw, svc, u).Start(app)
	return app
}

func uploadRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "face.jpg")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/detect_emotion", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestDetectEmotionMissingImage(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(t, svc, 0)

	resp, err := app.Test(uploadRequest(t, "file", []byte("data")))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error": "No image provided"}`, readBody(t, resp))
	assert.Empty(t, svc.received)
}

func TestDetectEmotionNoMultipartBody(t *testing.T) {
	app := newTestApp(t, &fakeService{}, 0)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/detect_emotion", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error": "No image provided"}`, readBody(t, resp))
}

func TestDetectEmotionSuccess(t *testing.T) {
	svc := &fakeService{
		results: []entity.EmotionResult{
			{Box: entity.Box{X: 10, Y: 20, Width: 30, Height: 40}, Emotion: entity.EmotionHappy},
		},
	}
	app := newTestApp(t, svc, 0)

	resp, err := app.Test(uploadRequest(t, "image", []byte("jpeg-bytes")))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"emotions": [{"box": [10, 20, 30, 40], "emotion": "happy"}]}`, readBody(t, resp))
	require.Len(t, svc.received, 1)
	assert.Equal(t, []byte("jpeg-bytes"), svc.received[0])
	assert.Equal(t, emotion.SourceUpload, svc.sources[0])
}

func TestDetectEmotionNoFacesIsEmptyArray(t *testing.T) {
	app := newTestApp(t, &fakeService{results: []entity.EmotionResult{}}, 0)

	resp, err := app.Test(uploadRequest(t, "image", []byte("blank")))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"emotions": []}`, readBody(t, resp))
}

func TestDetectEmotionProcessingFailure(t *testing.T) {
	svc := &fakeService{
		err: emotion.NewProcessingError(errors.New("image data could not be decoded")),
	}
	app := newTestApp(t, svc, 0)

	resp, err := app.Test(uploadRequest(t, "image", []byte("garbage")))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error": "image data could not be decoded"}`, readBody(t, resp))
}

func TestDetectEmotionImageTooLarge(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(t, svc, 4)

	resp, err := app.Test(uploadRequest(t, "image", []byte("too many bytes")))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.JSONEq(t, `{"error": "Image too large"}`, readBody(t, resp))
	assert.Empty(t, svc.received)
}

func TestVideoFeedCameraNotReady(t *testing.T) {
	app := newTestApp(t, &fakeService{}, 0)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/video_feed", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.JSONEq(t, `{"error": "Camera not available"}`, readBody(t, resp))
}

func TestVideoFeedStreamsParts(t *testing.T) {
	svc := &fakeService{
		cameraReady: true,
		frames:      [][]byte{[]byte("first"), []byte("second")},
	}
	app := newTestApp(t, svc, 0)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/video_feed", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "no-cache", resp.Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t,
		"--frame\r\nContent-Type: image/jpeg\r\n\r\nfirst\r\n"+
			"--frame\r\nContent-Type: image/jpeg\r\n\r\nsecond\r\n",
		readBody(t, resp))
}

func TestWriteMJPEGPart(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, WriteMJPEGPart(w, []byte{0xFF, 0xD8, 0xFF, 0xD9}))
	assert.Equal(t, "--frame\r\nContent-Type: image/jpeg\r\n\r\n\xFF\xD8\xFF\xD9\r\n", buf.String())
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &fakeService{cameraReady: true}, 0)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message": "Server is Healthy!", "camera": true, "detector": "fake"}`, readBody(t, resp))
}

func TestWebSocketRejectsPlainRequest(t *testing.T) {
	app := newTestApp(t, &fakeService{}, 0)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ws/detect_emotion", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestWebSocketDetectEmotion(t *testing.T) {
	svc := &fakeService{
		results: []entity.EmotionResult{
			{Box: entity.Box{X: 1, Y: 2, Width: 3, Height: 4}, Emotion: entity.EmotionSurprise},
		},
		failOn: "broken",
	}
	app := newTestApp(t, svc, 0)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	url := fmt.Sprintf("ws://%s/ws/detect_emotion", ln.Addr().String())
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("frame")))

	var reply map[string]any
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, []any{
		map[string]any{"box": []any{1.0, 2.0, 3.0, 4.0}, "emotion": "surprise"},
	}, reply["emotions"])

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("broken")))

	reply = nil
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "boom", reply["error"])
}
