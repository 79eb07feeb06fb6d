package vision

import (
	"image"
	"image/color"

	"EmotionDetection/internal/entity"

	"gocv.io/x/gocv"
)

// gocv takes RGBA and writes BGR, so this is drawn as pure blue.
var annotationColor = color.RGBA{R: 0, G: 0, B: 255, A: 0}

const (
	annotationThickness = 2
	annotationFontScale = 0.9
	labelOffset         = 10
)

// Annotate draws every result's box and label onto frame in place.
func Annotate(frame *gocv.Mat, results []entity.EmotionResult) {
	for _, r := range results {
		rect := image.Rect(r.Box.X, r.Box.Y, r.Box.X+r.Box.Width, r.Box.Y+r.Box.Height)
		gocv.Rectangle(frame, rect, annotationColor, annotationThickness)
		gocv.PutText(
			frame,
			string(r.Emotion),
			image.Pt(r.Box.X, r.Box.Y-labelOffset),
			gocv.FontHersheySimplex,
			annotationFontScale,
			annotationColor,
			annotationThickness,
		)
	}
}
