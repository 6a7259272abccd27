package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns either a fixed pose or a scripted sequence of poses.
type MockDetector struct {
	mu       sync.Mutex
	pose     LandmarkSet
	sequence []LandmarkSet
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector that sees nobody.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the pose returned by every Detect call.
func (m *MockDetector) SetLandmarks(pose LandmarkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = pose
	m.sequence = nil
}

// SetSequence queues poses returned one per Detect call.
// Once the queue is drained Detect reports NotDetected.
func (m *MockDetector) SetSequence(poses []LandmarkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = append([]LandmarkSet(nil), poses...)
	m.pose = NotDetected()
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Remaining returns how many scripted poses have not been consumed yet.
func (m *MockDetector) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sequence)
}

// Detect returns the pre-configured pose or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (LandmarkSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return NotDetected(), m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.pose, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// limbLength is the distance used between neighbouring joints in generated poses.
const limbLength = 0.15

// PoseWithAngle returns a pose containing only the three given joints, arranged so that
// the angle measured at vertex between a and b is the given number of degrees.
// The vertex sits in the middle of the frame and a points straight up from it.
func PoseWithAngle(a, vertex, b Joint, degrees float64) LandmarkSet {
	pose := NewLandmarkSet()

	center := Point2D{X: 0.5, Y: 0.5}
	pose.Set(vertex, center)
	pose.Set(a, Point2D{X: center.X, Y: center.Y - limbLength})

	// Image Y grows downwards, so "up" is -90 degrees.
	theta := (-90 + degrees) * math.Pi / 180
	pose.Set(b, Point2D{
		X: center.X + limbLength*math.Cos(theta),
		Y: center.Y + limbLength*math.Sin(theta),
	})

	return pose
}

// StandingLandmarks returns a preset upright pose seen from the side.
// Arms hang straight down and legs are straight: elbow and knee angles are 180°,
// the arm lies along the torso (0° at the shoulder) and the hip is open (180°).
func StandingLandmarks() LandmarkSet {
	pose := NewLandmarkSet()

	pose.Set(Nose, Point2D{X: 0.50, Y: 0.10})
	pose.Set(RightShoulder, Point2D{X: 0.45, Y: 0.25})
	pose.Set(LeftShoulder, Point2D{X: 0.55, Y: 0.25})
	pose.Set(RightElbow, Point2D{X: 0.45, Y: 0.40})
	pose.Set(LeftElbow, Point2D{X: 0.55, Y: 0.40})
	pose.Set(RightWrist, Point2D{X: 0.45, Y: 0.55})
	pose.Set(LeftWrist, Point2D{X: 0.55, Y: 0.55})
	pose.Set(RightHip, Point2D{X: 0.45, Y: 0.60})
	pose.Set(LeftHip, Point2D{X: 0.55, Y: 0.60})
	pose.Set(RightKnee, Point2D{X: 0.45, Y: 0.78})
	pose.Set(LeftKnee, Point2D{X: 0.55, Y: 0.78})
	pose.Set(RightAnkle, Point2D{X: 0.45, Y: 0.95})
	pose.Set(LeftAnkle, Point2D{X: 0.55, Y: 0.95})

	return pose
}

// CurlTopLandmarks returns StandingLandmarks with the right forearm raised
// to the shoulder, leaving an elbow angle of roughly 20°.
func CurlTopLandmarks() LandmarkSet {
	pose := StandingLandmarks()

	elbow := pose.Points[RightElbow]
	theta := (-90 + 20.0) * math.Pi / 180
	pose.Set(RightWrist, Point2D{
		X: elbow.X + limbLength*math.Cos(theta),
		Y: elbow.Y + limbLength*math.Sin(theta),
	})

	return pose
}
