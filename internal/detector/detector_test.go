package detector

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

// angleAt is a local copy of the joint angle formula so this package's tests
// do not depend on the exercise package.
func angleAt(a, b, c Point2D) float64 {
	rad := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	deg := math.Abs(rad * 180 / math.Pi)
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}

func TestJoint_String(t *testing.T) {
	tests := []struct {
		joint Joint
		want  string
	}{
		{Nose, "NOSE"},
		{RightShoulder, "RIGHT_SHOULDER"},
		{RightElbow, "RIGHT_ELBOW"},
		{RightWrist, "RIGHT_WRIST"},
		{RightHip, "RIGHT_HIP"},
		{RightKnee, "RIGHT_KNEE"},
		{RightAnkle, "RIGHT_ANKLE"},
		{RightFootIndex, "RIGHT_FOOT_INDEX"},
		{NumJoints, "UNKNOWN"},
		{Joint(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.joint.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJoint(t *testing.T) {
	for j := Joint(0); j < NumJoints; j++ {
		parsed, ok := ParseJoint(j.String())
		if !ok || parsed != j {
			t.Errorf("ParseJoint(%q) = %v, %v; want %v, true", j.String(), parsed, ok, j)
		}
	}

	if _, ok := ParseJoint("LEFT_ANTENNA"); ok {
		t.Error("expected unknown name to fail")
	}
}

func TestLandmarkSet(t *testing.T) {
	t.Run("not detected has no joints", func(t *testing.T) {
		s := NotDetected()
		if s.Present {
			t.Error("expected Present to be false")
		}
		if s.Has(RightElbow) {
			t.Error("expected no joints")
		}
	})

	t.Run("set and get", func(t *testing.T) {
		s := NewLandmarkSet()
		s.Set(RightElbow, Point2D{X: 0.2, Y: 0.3})

		p, ok := s.Get(RightElbow)
		if !ok {
			t.Fatal("expected RightElbow to be present")
		}
		if p.X != 0.2 || p.Y != 0.3 {
			t.Errorf("got %+v", p)
		}
		if _, ok := s.Get(RightWrist); ok {
			t.Error("RightWrist should be missing")
		}
	})

	t.Run("invalid joint ignored", func(t *testing.T) {
		s := NewLandmarkSet()
		s.Set(NumJoints, Point2D{X: 1, Y: 1})
		if len(s.Points) != 0 {
			t.Errorf("expected no points, got %d", len(s.Points))
		}
	})

	t.Run("set on zero value allocates", func(t *testing.T) {
		var s LandmarkSet
		s.Set(Nose, Point2D{})
		if !s.Has(Nose) {
			t.Error("expected Nose after Set")
		}
	})

	t.Run("without does not mutate original", func(t *testing.T) {
		s := StandingLandmarks()
		trimmed := s.Without(RightWrist)

		if trimmed.Has(RightWrist) {
			t.Error("trimmed set still has RightWrist")
		}
		if !s.Has(RightWrist) {
			t.Error("original set lost RightWrist")
		}
		if !trimmed.Present {
			t.Error("Without must keep the presence flag")
		}
	})

	t.Run("json uses joint names", func(t *testing.T) {
		s := NewLandmarkSet()
		s.Set(RightKnee, Point2D{X: 0.5, Y: 0.75})

		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var decoded LandmarkSet
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if p, ok := decoded.Get(RightKnee); !ok || p.Y != 0.75 {
			t.Errorf("decoded %s into %+v", data, decoded)
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns not detected by default", func(t *testing.T) {
		mock := NewMockDetector()
		pose, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if pose.Present {
			t.Error("expected no detection")
		}
	})

	t.Run("returns configured pose", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetLandmarks(StandingLandmarks())

		for i := 0; i < 3; i++ {
			pose, err := mock.Detect(nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !pose.Has(RightShoulder, RightElbow, RightWrist) {
				t.Errorf("call %d: expected arm joints", i)
			}
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("plays sequence then reports nothing", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetSequence([]LandmarkSet{StandingLandmarks(), CurlTopLandmarks()})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if !first.Present || !second.Present {
			t.Error("expected scripted poses to be present")
		}
		if third.Present {
			t.Error("expected drained sequence to report no detection")
		}
		if mock.Remaining() != 0 {
			t.Errorf("Remaining() = %d, want 0", mock.Remaining())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		pose, err := mock.Detect(nil)
		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if pose.Present {
			t.Error("expected no detection when error is set")
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPoseWithAngle(t *testing.T) {
	for _, want := range []float64{0, 30, 45, 90, 120, 160, 180} {
		pose := PoseWithAngle(RightShoulder, RightElbow, RightWrist, want)

		a, _ := pose.Get(RightShoulder)
		b, _ := pose.Get(RightElbow)
		c, _ := pose.Get(RightWrist)

		if got := angleAt(a, b, c); math.Abs(got-want) > 1e-6 {
			t.Errorf("PoseWithAngle(%v) measured %v", want, got)
		}
	}
}

func TestStandingLandmarks(t *testing.T) {
	pose := StandingLandmarks()

	get := func(j Joint) Point2D {
		p, ok := pose.Get(j)
		if !ok {
			t.Fatalf("missing %s", j)
		}
		return p
	}

	t.Run("arm straight", func(t *testing.T) {
		got := angleAt(get(RightShoulder), get(RightElbow), get(RightWrist))
		if math.Abs(got-180) > epsilon {
			t.Errorf("elbow angle = %f, want 180", got)
		}
	})

	t.Run("leg straight", func(t *testing.T) {
		got := angleAt(get(RightHip), get(RightKnee), get(RightAnkle))
		if math.Abs(got-180) > epsilon {
			t.Errorf("knee angle = %f, want 180", got)
		}
	})

	t.Run("arm along the torso", func(t *testing.T) {
		got := angleAt(get(RightHip), get(RightShoulder), get(RightWrist))
		if got > epsilon {
			t.Errorf("shoulder angle = %f, want 0", got)
		}
	})

	t.Run("curl top bends the elbow", func(t *testing.T) {
		top := CurlTopLandmarks()
		a, _ := top.Get(RightShoulder)
		b, _ := top.Get(RightElbow)
		c, _ := top.Get(RightWrist)
		if got := angleAt(a, b, c); math.Abs(got-20) > 1e-6 {
			t.Errorf("elbow angle = %f, want 20", got)
		}
	})
}

func TestParsePoseResponse(t *testing.T) {
	t.Run("empty landmarks means not detected", func(t *testing.T) {
		pose, err := parsePoseResponse([]byte(`{"landmarks":[]}`+"\n"), 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pose.Present {
			t.Error("expected no detection")
		}
	})

	t.Run("low visibility joints dropped", func(t *testing.T) {
		line := []byte(`{"landmarks":[{"x":0.1,"y":0.2,"visibility":0.9},{"x":0.3,"y":0.4,"visibility":0.1}]}`)
		pose, err := parsePoseResponse(line, 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pose.Present {
			t.Fatal("expected detection")
		}
		if !pose.Has(Nose) {
			t.Error("expected visible joint to be kept")
		}
		if pose.Has(LeftEyeInner) {
			t.Error("expected low visibility joint to be dropped")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parsePoseResponse([]byte("not json"), 0.5); err == nil {
			t.Error("expected parse error")
		}
	})
}
