package vision

import (
	"image"

	"EmotionDetection/internal/entity"

	"gocv.io/x/gocv"
)

// FaceSize is the side of the square input the emotion classifier expects.
const FaceSize = 48

// ClipBox intersects box with a cols x rows frame. It reports false when
// nothing of the box is left.
func ClipBox(box entity.Box, cols, rows int) (entity.Box, bool) {
	x1 := max(box.X, 0)
	y1 := max(box.Y, 0)
	x2 := min(box.X+box.Width, cols)
	y2 := min(box.Y+box.Height, rows)

	if x2 <= x1 || y2 <= y1 {
		return entity.Box{}, false
	}

	return entity.Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// PreprocessFace crops box out of frame and returns a single channel
// FaceSize x FaceSize CV_32F Mat scaled to [0,1]. On error the returned Mat
// is not valid and must not be closed.
func PreprocessFace(frame gocv.Mat, box entity.Box) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.Mat{}, ErrEmptyFrame
	}

	clipped, ok := ClipBox(box, frame.Cols(), frame.Rows())
	if !ok {
		return gocv.Mat{}, ErrEmptyCrop
	}

	region := frame.Region(image.Rect(clipped.X, clipped.Y, clipped.X+clipped.Width, clipped.Y+clipped.Height))
	defer region.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	if region.Channels() == 1 {
		region.CopyTo(&gray)
	} else {
		gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Pt(FaceSize, FaceSize), 0, 0, gocv.InterpolationLinear)

	face := gocv.NewMat()
	resized.ConvertToWithParams(&face, gocv.MatTypeCV32F, 1.0/255.0, 0)

	return face, nil
}
