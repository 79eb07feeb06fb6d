// Package visiontest builds fixtures for tests of the vision pipeline.
package visiontest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WriteCascade writes a pigo cascade of one depth-1 tree whose leaves both
// score pred, and returns its path. A threshold above pred rejects every
// window; a threshold below it accepts every window.
func WriteCascade(t testing.TB, pred, threshold float32) string {
	t.Helper()

	const depth = 1
	leaves := 1 << depth

	buf := make([]byte, 8) // unused header
	buf = binary.LittleEndian.AppendUint32(buf, depth)
	buf = binary.LittleEndian.AppendUint32(buf, 1)

	// 4 int8 pixel offsets per inner node, all zero
	buf = append(buf, make([]byte, 4*leaves-4)...)
	for i := 0; i < leaves; i++ {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(pred))
	}
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(threshold))

	path := filepath.Join(t.TempDir(), "cascade")
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("write cascade: %v", err)
	}
	return path
}

// RejectAllCascade never reports a face.
func RejectAllCascade(t testing.TB) string {
	return WriteCascade(t, 0, 10)
}

// AcceptAllCascade reports a face in every window with quality 11.
func AcceptAllCascade(t testing.TB) string {
	return WriteCascade(t, 1, -10)
}

// FaceFinderPath returns the path of pigo's real "facefinder" cascade from
// PIGO_CASCADE_PATH, skipping the test when it is not set or missing.
func FaceFinderPath(t testing.TB) string {
	t.Helper()

	path := os.Getenv("PIGO_CASCADE_PATH")
	if path == "" {
		t.Skip("PIGO_CASCADE_PATH not set")
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("facefinder cascade not available: %v", err)
	}
	return path
}
