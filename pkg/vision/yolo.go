package vision

import (
	"fmt"
	"image"
	"os"

	"EmotionDetection/internal/entity"

	"gocv.io/x/gocv"
)

const (
	yoloInputSize           = 640
	defaultYOLOConfidence   = 0.25
	defaultYOLONMSThreshold = 0.7
)

type yoloFaceLocator struct {
	net           gocv.Net
	confThreshold float32
	nmsThreshold  float32
}

// NewYOLOFaceLocator loads a YOLOv8 face model exported to ONNX.
func NewYOLOFaceLocator(modelPath string, confThreshold, nmsThreshold float32) (IFaceLocator, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelNotLoaded, err)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: face model %s", ErrModelNotLoaded, modelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	if confThreshold <= 0 {
		confThreshold = defaultYOLOConfidence
	}
	if nmsThreshold <= 0 {
		nmsThreshold = defaultYOLONMSThreshold
	}

	return &yoloFaceLocator{
		net:           net,
		confThreshold: confThreshold,
		nmsThreshold:  nmsThreshold,
	}, nil
}

func (l *yoloFaceLocator) Name() string {
	return FaceDetectorYOLO
}

func (l *yoloFaceLocator) Locate(frame gocv.Mat) ([]entity.Detection, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(yoloInputSize, yoloInputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	l.net.SetInput(blob, "")
	out := l.net.Forward("")
	defer out.Close()

	sizes := out.Size()
	if len(sizes) != 3 {
		return nil, fmt.Errorf("%w: face model output dims %v", ErrUnexpectedOutput, sizes)
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read face model output: %w", err)
	}

	scaleX := float32(frame.Cols()) / yoloInputSize
	scaleY := float32(frame.Rows()) / yoloInputSize

	candidates, err := ParseYOLOOutput(data, sizes[1], sizes[2], l.confThreshold, scaleX, scaleY)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []entity.Detection{}, nil
	}

	rects := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		rects[i] = image.Rect(c.Box.X, c.Box.Y, c.Box.X+c.Box.Width, c.Box.Y+c.Box.Height)
		scores[i] = c.Confidence
	}

	keep := gocv.NMSBoxes(rects, scores, l.confThreshold, l.nmsThreshold)
	detections := make([]entity.Detection, 0, len(keep))
	for _, idx := range keep {
		detections = append(detections, candidates[idx])
	}

	return detections, nil
}

func (l *yoloFaceLocator) Close() error {
	return l.net.Close()
}

// ParseYOLOOutput reads a channel-major [attrs x anchors] YOLOv8 output.
// Rows 0-3 hold cx, cy, w, h in network input pixels and row 4 the face
// score; any further rows (landmarks) are ignored. Boxes are scaled back to
// frame pixels and truncated to integers.
func ParseYOLOOutput(data []float32, attrs, anchors int, confThreshold, scaleX, scaleY float32) ([]entity.Detection, error) {
	if attrs < 5 || anchors < 0 || len(data) < attrs*anchors {
		return nil, fmt.Errorf("%w: %d values for %dx%d output", ErrUnexpectedOutput, len(data), attrs, anchors)
	}

	at := func(row, col int) float32 {
		return data[row*anchors+col]
	}

	var detections []entity.Detection
	for i := 0; i < anchors; i++ {
		conf := at(4, i)
		if conf < confThreshold {
			continue
		}

		cx, cy, w, h := at(0, i), at(1, i), at(2, i), at(3, i)
		x1 := int((cx - w/2) * scaleX)
		y1 := int((cy - h/2) * scaleY)
		x2 := int((cx + w/2) * scaleX)
		y2 := int((cy + h/2) * scaleY)

		detections = append(detections, entity.Detection{
			Box:        entity.Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1},
			Confidence: conf,
		})
	}

	return detections, nil
}
