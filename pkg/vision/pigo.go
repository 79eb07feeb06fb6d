package vision

import (
	"fmt"
	"os"

	"EmotionDetection/internal/entity"

	pigo "github.com/esimov/pigo/core"
	"gocv.io/x/gocv"
)

const (
	pigoShiftFactor  = 0.1
	pigoScaleFactor  = 1.1
	pigoIoUThreshold = 0.2
	pigoAngle        = 0.0
)

type pigoFaceLocator struct {
	classifier *pigo.Pigo
	minQuality float32
	minSize    int
	maxSize    int
}

// NewPigoFaceLocator unpacks a pigo face cascade (e.g. "facefinder").
func NewPigoFaceLocator(cascadePath string, minQuality float32, minSize, maxSize int) (IFaceLocator, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelNotLoaded, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack cascade %s: %v", ErrModelNotLoaded, cascadePath, err)
	}

	if minSize <= 0 {
		minSize = 20
	}
	if maxSize <= 0 {
		maxSize = 1000
	}

	return &pigoFaceLocator{
		classifier: classifier,
		minQuality: minQuality,
		minSize:    minSize,
		maxSize:    maxSize,
	}, nil
}

func (l *pigoFaceLocator) Name() string {
	return FaceDetectorPigo
}

func (l *pigoFaceLocator) Locate(frame gocv.Mat) ([]entity.Detection, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	img, err := frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	src := pigo.ImgToNRGBA(img)
	cols, rows := src.Bounds().Max.X, src.Bounds().Max.Y

	params := pigo.CascadeParams{
		MinSize:     l.minSize,
		MaxSize:     l.maxSize,
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: pigoScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := l.classifier.RunCascade(params, pigoAngle)
	dets = l.classifier.ClusterDetections(dets, pigoIoUThreshold)

	return PigoDetections(dets, l.minQuality), nil
}

func (l *pigoFaceLocator) Close() error {
	return nil
}

// PigoDetections converts pigo's centre/scale detections into boxes, dropping
// those at or below minQuality.
func PigoDetections(dets []pigo.Detection, minQuality float32) []entity.Detection {
	out := make([]entity.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Q <= minQuality {
			continue
		}
		out = append(out, entity.Detection{
			Box: entity.Box{
				X:      d.Col - d.Scale/2,
				Y:      d.Row - d.Scale/2,
				Width:  d.Scale,
				Height: d.Scale,
			},
			Confidence: d.Q,
		})
	}
	return out
}
