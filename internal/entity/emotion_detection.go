package entity

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Emotion is one of the seven labels produced by the classifier.
type Emotion string

const (
	EmotionAngry    Emotion = "angry"
	EmotionDisgust  Emotion = "disgust"
	EmotionFear     Emotion = "fear"
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionSurprise Emotion = "surprise"
	EmotionNeutral  Emotion = "neutral"
)

// EmotionLabels is indexed by the classifier output position.
var EmotionLabels = [...]Emotion{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionSad,
	EmotionSurprise,
	EmotionNeutral,
}

func (e Emotion) Valid() bool {
	for _, l := range EmotionLabels {
		if l == e {
			return true
		}
	}
	return false
}

// Box is an axis-aligned rectangle in frame pixels. It is serialized as
// [x, y, width, height].
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (b Box) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal([4]int{b.X, b.Y, b.Width, b.Height})
}

func (b *Box) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("box must have 4 elements, got %d", len(raw))
	}
	b.X, b.Y, b.Width, b.Height = raw[0], raw[1], raw[2], raw[3]
	return nil
}

type Detection struct {
	Box        Box
	Confidence float32
}

type EmotionResult struct {
	Box     Box     `json:"box"`
	Emotion Emotion `json:"emotion"`
}

var ErrUnknownEmotionIndex = errors.New("unknown emotion index")

// EmotionAt maps a classifier output index to its label.
func EmotionAt(i int) (Emotion, error) {
	if i < 0 || i >= len(EmotionLabels) {
		return "", fmt.Errorf("%w: %d", ErrUnknownEmotionIndex, i)
	}
	return EmotionLabels[i], nil
}
