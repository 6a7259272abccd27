package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoMoreFrames is returned by MockCamera when a non-looping sequence is exhausted.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera plays back a fixed frame sequence, or produces blank frames when it
// has none. It is used in tests where the detector is mocked and pixel content
// does not matter.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	fps     int
	opens   int
	openErr error
	running bool
	mu      sync.Mutex
}

// NewMockCamera creates a MockCamera playing frames. With loop set, playback wraps around.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

// NewBlankCamera creates a MockCamera that returns blank frames forever.
func NewBlankCamera() *MockCamera {
	return NewMockCamera(nil, true)
}

// NewFlickerCamera creates a looping MockCamera alternating black and white frames,
// so every frame after the first one reads as motion. The returned function frees
// the frames once the camera is no longer read.
func NewFlickerCamera() (*MockCamera, func()) {
	black := gocv.NewMatWithSize(DefaultHeight/4, DefaultWidth/4, gocv.MatTypeCV8UC3)
	white := gocv.NewMatWithSize(DefaultHeight/4, DefaultWidth/4, gocv.MatTypeCV8UC3)
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	return NewMockCamera([]*gocv.Mat{&black, &white}, true), func() {
		black.Close()
		white.Close()
	}
}

// SetOpenError makes the next calls to Open fail with err. Passing nil clears it.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.running = true
	c.index = 0
	c.opens++
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if len(c.frames) == 0 {
		frame := gocv.NewMatWithSize(DefaultHeight/4, DefaultWidth/4, gocv.MatTypeCV8UC3)
		return &frame, nil
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrNoMoreFrames
		}
		c.index = 0
	}

	// Clone so callers can close what they get.
	frame := c.frames[c.index].Clone()
	c.index++

	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Opens returns how many times Open succeeded.
func (c *MockCamera) Opens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

// SetFrames replaces the frame sequence
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
