package vision

import (
	"fmt"

	"gocv.io/x/gocv"
)

const DefaultJPEGQuality = 95

// DecodeImage turns encoded image bytes into a BGR frame. The caller closes
// the returned Mat.
func DecodeImage(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.Mat{}, ErrEmptyImage
	}

	frame, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	if frame.Empty() {
		frame.Close()
		return gocv.Mat{}, ErrUndecodableImage
	}

	return frame, nil
}

// EncodeJPEG compresses a frame. The returned slice is owned by the caller.
func EncodeJPEG(frame gocv.Mat, quality int) ([]byte, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	defer buf.Close()

	native := buf.GetBytes()
	out := make([]byte, len(native))
	copy(out, native)
	return out, nil
}
