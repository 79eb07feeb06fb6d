package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestJPEGRoundTripKeepsDimensions(t *testing.T) {
	frame := newSolidFrame(240, 320, 10, 200, 30)
	defer frame.Close()

	data, err := EncodeJPEG(frame, 90)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	decoded, err := DecodeImage(data)
	require.NoError(t, err)
	defer decoded.Close()

	assert.Equal(t, frame.Rows(), decoded.Rows())
	assert.Equal(t, frame.Cols(), decoded.Cols())
	assert.Equal(t, 3, decoded.Channels())
}

func TestEncodeJPEGDefaultsQuality(t *testing.T) {
	frame := newSolidFrame(16, 16, 0, 0, 0)
	defer frame.Close()

	data, err := EncodeJPEG(frame, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestEncodeJPEGEmptyFrame(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()

	_, err := EncodeJPEG(frame, 90)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestDecodeImageEmpty(t *testing.T) {
	_, err := DecodeImage(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestDecodeImageGarbage(t *testing.T) {
	_, err := DecodeImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUndecodableImage)
}
