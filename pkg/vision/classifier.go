package vision

import (
	"fmt"
	"image"
	"os"

	"EmotionDetection/internal/entity"

	"gocv.io/x/gocv"
)

type onnxEmotionClassifier struct {
	net gocv.Net
}

// NewEmotionClassifier loads an ONNX emotion model taking a [1,1,48,48]
// float input and producing 7 scores ordered like entity.EmotionLabels.
func NewEmotionClassifier(modelPath string) (IEmotionClassifier, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelNotLoaded, err)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: emotion model %s", ErrModelNotLoaded, modelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &onnxEmotionClassifier{net: net}, nil
}

func (c *onnxEmotionClassifier) Classify(face gocv.Mat) (entity.Emotion, error) {
	if face.Empty() {
		return "", ErrEmptyCrop
	}

	blob := gocv.BlobFromImage(face, 1.0, image.Pt(FaceSize, FaceSize), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	scores, err := out.DataPtrFloat32()
	if err != nil {
		return "", fmt.Errorf("read emotion scores: %w", err)
	}

	return ArgmaxEmotion(scores)
}

func (c *onnxEmotionClassifier) Close() error {
	return c.net.Close()
}

// ArgmaxEmotion picks the label with the highest score. Ties go to the lower
// index. No threshold is applied.
func ArgmaxEmotion(scores []float32) (entity.Emotion, error) {
	if len(scores) != len(entity.EmotionLabels) {
		return "", fmt.Errorf("%w: %d emotion scores, want %d", ErrUnexpectedOutput, len(scores), len(entity.EmotionLabels))
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	return entity.EmotionAt(best)
}
