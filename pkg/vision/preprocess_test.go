package vision

import (
	"testing"

	"EmotionDetection/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func newSolidFrame(rows, cols int, b, g, r float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func TestClipBox(t *testing.T) {
	tests := []struct {
		name string
		box  entity.Box
		want entity.Box
		ok   bool
	}{
		{"inside", entity.Box{X: 10, Y: 10, Width: 20, Height: 30}, entity.Box{X: 10, Y: 10, Width: 20, Height: 30}, true},
		{"overlaps left top", entity.Box{X: -5, Y: -10, Width: 20, Height: 20}, entity.Box{X: 0, Y: 0, Width: 15, Height: 10}, true},
		{"overlaps right bottom", entity.Box{X: 90, Y: 40, Width: 20, Height: 20}, entity.Box{X: 90, Y: 40, Width: 10, Height: 10}, true},
		{"outside right", entity.Box{X: 150, Y: 10, Width: 20, Height: 20}, entity.Box{}, false},
		{"outside above", entity.Box{X: 10, Y: -40, Width: 20, Height: 20}, entity.Box{}, false},
		{"zero width", entity.Box{X: 10, Y: 10, Width: 0, Height: 20}, entity.Box{}, false},
		{"negative height", entity.Box{X: 10, Y: 10, Width: 10, Height: -5}, entity.Box{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClipBox(tt.box, 100, 50)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreprocessFace(t *testing.T) {
	frame := newSolidFrame(120, 160, 128, 128, 128)
	defer frame.Close()

	face, err := PreprocessFace(frame, entity.Box{X: 20, Y: 30, Width: 64, Height: 50})
	require.NoError(t, err)
	defer face.Close()

	assert.Equal(t, FaceSize, face.Rows())
	assert.Equal(t, FaceSize, face.Cols())
	assert.Equal(t, 1, face.Channels())
	assert.Equal(t, gocv.MatTypeCV32F, face.Type())

	for r := 0; r < face.Rows(); r++ {
		for c := 0; c < face.Cols(); c++ {
			v := face.GetFloatAt(r, c)
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
	assert.InDelta(t, 128.0/255.0, face.GetFloatAt(24, 24), 0.01)
}

func TestPreprocessFaceWhiteIsOne(t *testing.T) {
	frame := newSolidFrame(60, 60, 255, 255, 255)
	defer frame.Close()

	face, err := PreprocessFace(frame, entity.Box{X: 0, Y: 0, Width: 60, Height: 60})
	require.NoError(t, err)
	defer face.Close()

	assert.InDelta(t, 1.0, face.GetFloatAt(0, 0), 1e-6)
	assert.InDelta(t, 1.0, face.GetFloatAt(47, 47), 1e-6)
}

func TestPreprocessFacePartiallyOutside(t *testing.T) {
	frame := newSolidFrame(50, 50, 0, 0, 0)
	defer frame.Close()

	face, err := PreprocessFace(frame, entity.Box{X: 40, Y: 40, Width: 30, Height: 30})
	require.NoError(t, err)
	defer face.Close()

	assert.Equal(t, FaceSize, face.Rows())
	assert.InDelta(t, 0.0, face.GetFloatAt(10, 10), 1e-6)
}

func TestPreprocessFaceEmptyCrop(t *testing.T) {
	frame := newSolidFrame(50, 50, 0, 0, 0)
	defer frame.Close()

	_, err := PreprocessFace(frame, entity.Box{X: 60, Y: 10, Width: 10, Height: 10})
	assert.ErrorIs(t, err, ErrEmptyCrop)

	_, err = PreprocessFace(frame, entity.Box{X: 10, Y: 10, Width: 0, Height: 0})
	assert.ErrorIs(t, err, ErrEmptyCrop)
}

func TestPreprocessFaceEmptyFrame(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()

	_, err := PreprocessFace(frame, entity.Box{X: 0, Y: 0, Width: 10, Height: 10})
	assert.ErrorIs(t, err, ErrEmptyFrame)
}
