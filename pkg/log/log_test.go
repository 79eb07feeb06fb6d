package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func TestErrorWithTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	out := l.Out
	l.SetOutput(&buf)
	t.Cleanup(func() { l.SetOutput(out) })

	first := ErrorWithTraceID(Fields{RequestIDKey: "req-1"}, "first failure")
	second := ErrorWithTraceID(nil, "second failure")

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Contains(t, buf.String(), first)
	assert.Contains(t, buf.String(), "req-1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel(""))
	assert.Equal(t, logrus.DebugLevel, parseLevel("loud"))
	assert.Equal(t, logrus.WarnLevel, parseLevel("warn"))
}
