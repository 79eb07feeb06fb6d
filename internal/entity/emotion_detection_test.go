package entity

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmotionResultJSON(t *testing.T) {
	in := EmotionResult{Box: Box{X: 12, Y: 34, Width: 56, Height: 78}, Emotion: EmotionSurprise}

	data, err := jsoniter.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"box": [12, 34, 56, 78], "emotion": "surprise"}`, string(data))

	var out EmotionResult
	require.NoError(t, jsoniter.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestBoxUnmarshalRejectsWrongLength(t *testing.T) {
	var b Box
	assert.Error(t, jsoniter.Unmarshal([]byte(`[1, 2, 3]`), &b))
	assert.Error(t, jsoniter.Unmarshal([]byte(`{"x": 1}`), &b))
}

func TestEmotionAt(t *testing.T) {
	for i, want := range EmotionLabels {
		got, err := EmotionAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.True(t, got.Valid())
	}

	_, err := EmotionAt(len(EmotionLabels))
	assert.ErrorIs(t, err, ErrUnknownEmotionIndex)
	assert.False(t, Emotion("bored").Valid())
}
