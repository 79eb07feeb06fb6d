package vision

import (
	"fmt"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

type camera struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	device  string
}

// OpenCamera opens a capture device. An integer device is a camera index,
// anything else is handed to OpenCV as a file path or stream URL.
func OpenCamera(device string) (ICamera, error) {
	var (
		capture *gocv.VideoCapture
		err     error
	)
	if idx, convErr := strconv.Atoi(device); convErr == nil {
		capture, err = gocv.OpenVideoCapture(idx)
	} else {
		capture, err = gocv.OpenVideoCapture(device)
	}
	if err != nil {
		return nil, fmt.Errorf("open video source %q: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video source not opened: %s", device)
	}

	return &camera{
		capture: capture,
		device:  device,
	}, nil
}

func (c *camera) Read(dst *gocv.Mat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return ErrCameraClosed
	}
	if ok := c.capture.Read(dst); !ok || dst.Empty() {
		return ErrFrameUnavailable
	}
	return nil
}

func (c *camera) IsOpened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.capture != nil && c.capture.IsOpened()
}

func (c *camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}
