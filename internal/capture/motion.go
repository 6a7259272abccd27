package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// blurKernel is the Gaussian kernel size used before differencing.
	blurKernel = 21
	// pixelDiffThreshold is the grey level change that marks a pixel as changed.
	pixelDiffThreshold = 25
	// DefaultMotionThreshold is the percentage of changed pixels that counts as motion.
	DefaultMotionThreshold = 1.0
	// DefaultIdleTimeout is how long without motion before the pipeline slows down.
	DefaultIdleTimeout = 2 * time.Second
)

// MotionDetector reports whether consecutive frames differ enough to be worth
// running pose detection on. It blurs a grey copy of each frame and compares it
// with the previous one.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	hasPrev   bool
	mu        sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage of pixels
// that must change, e.g. 1.0 for 1%. Non-positive values use DefaultMotionThreshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame with the previous frame and returns whether motion was
// seen together with the percentage of changed pixels. The first frame after
// creation or Reset only establishes a baseline and reports no motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)

	if !m.hasPrev {
		blurred.CopyTo(&m.prev)
		m.hasPrev = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	changed := gocv.NewMat()
	defer changed.Close()
	gocv.Threshold(diff, &changed, pixelDiffThreshold, 255, gocv.ThresholdBinary)

	percent := float64(gocv.CountNonZero(changed)) / float64(changed.Rows()*changed.Cols()) * 100.0

	blurred.CopyTo(&m.prev)

	return percent > m.threshold, percent
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline frame. The detector stays usable and starts over.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.hasPrev = false
}

// SetThreshold sets the motion threshold. Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Threshold returns the current motion threshold.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// Activity turns per-frame motion results into an idle/active mode.
// Any motion switches to active; staying without motion for longer than the idle
// timeout switches back to idle.
type Activity struct {
	idleTimeout time.Duration
	lastMotion  time.Time
	active      bool
	now         func() time.Time
}

// NewActivity creates an idle Activity tracker.
func NewActivity(idleTimeout time.Duration) *Activity {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Activity{
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Observe records the motion result of one frame. It returns the current mode and
// whether this observation changed it.
func (a *Activity) Observe(motion bool) (active, changed bool) {
	now := a.now()

	if motion {
		a.lastMotion = now
		if !a.active {
			a.active = true
			return true, true
		}
		return true, false
	}

	if a.active && now.Sub(a.lastMotion) > a.idleTimeout {
		a.active = false
		return false, true
	}
	return a.active, false
}

// Active reports the current mode.
func (a *Activity) Active() bool {
	return a.active
}

// Reset returns to idle mode.
func (a *Activity) Reset() {
	a.active = false
	a.lastMotion = time.Time{}
}
