// Package capture provides camera capture and motion gating using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Default camera settings.
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEmptyFrame is returned when the device produced no image.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// CameraConfig selects the capture device and its format.
type CameraConfig struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
}

// DefaultCameraConfig returns the settings used for pose detection.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		FPS:    DefaultFPS,
	}
}

// deviceCamera reads frames from a local video device.
type deviceCamera struct {
	config  CameraConfig
	capture *gocv.VideoCapture
	mu      sync.Mutex
}

// NewCamera creates a Camera for the given device. Zero values in config fall back to defaults.
func NewCamera(config CameraConfig) Camera {
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = DefaultHeight
	}
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	return &deviceCamera{config: config}
}

// Open opens the device. Opening an open camera is a no-op.
func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.config.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.config.DeviceID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: device not available", c.config.DeviceID)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

	c.capture = vc

	logrus.WithFields(logrus.Fields{
		"device": c.config.DeviceID,
		"width":  c.config.Width,
		"height": c.config.Height,
	}).Info("camera opened")
	return nil
}

// Close releases the device.
func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}

	err := c.capture.Close()
	c.capture = nil

	logrus.WithField("device", c.config.DeviceID).Info("camera closed")
	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	return &mat, nil
}

// SetFPS changes the capture rate. Values less than or equal to 0 are ignored.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.config.FPS = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the configured capture rate.
func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.FPS
}

// IsOpen reports whether the device is open.
func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
