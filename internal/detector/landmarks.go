// Package detector provides pose detection interfaces and types for repetition counting.
package detector

import "fmt"

// Joint identifies a body landmark. Values follow the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
type Joint int

const (
	Nose Joint = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
	NumJoints
)

var jointNames = [NumJoints]string{
	"NOSE", "LEFT_EYE_INNER", "LEFT_EYE", "LEFT_EYE_OUTER",
	"RIGHT_EYE_INNER", "RIGHT_EYE", "RIGHT_EYE_OUTER", "LEFT_EAR", "RIGHT_EAR",
	"MOUTH_LEFT", "MOUTH_RIGHT", "LEFT_SHOULDER", "RIGHT_SHOULDER",
	"LEFT_ELBOW", "RIGHT_ELBOW", "LEFT_WRIST", "RIGHT_WRIST",
	"LEFT_PINKY", "RIGHT_PINKY", "LEFT_INDEX", "RIGHT_INDEX",
	"LEFT_THUMB", "RIGHT_THUMB", "LEFT_HIP", "RIGHT_HIP",
	"LEFT_KNEE", "RIGHT_KNEE", "LEFT_ANKLE", "RIGHT_ANKLE",
	"LEFT_HEEL", "RIGHT_HEEL", "LEFT_FOOT_INDEX", "RIGHT_FOOT_INDEX",
}

// String returns the upper snake case name of the joint, e.g. RIGHT_ELBOW.
func (j Joint) String() string {
	if !j.Valid() {
		return "UNKNOWN"
	}
	return jointNames[j]
}

// Valid reports whether j is part of the joint vocabulary.
func (j Joint) Valid() bool {
	return j >= 0 && j < NumJoints
}

// ParseJoint resolves a joint name produced by Joint.String.
func ParseJoint(name string) (Joint, bool) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the joint by name.
func (j Joint) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

// UnmarshalText decodes a joint encoded by MarshalText.
func (j *Joint) UnmarshalText(text []byte) error {
	parsed, ok := ParseJoint(string(text))
	if !ok {
		return fmt.Errorf("unknown joint %q", text)
	}
	*j = parsed
	return nil
}

// Point2D is a position in normalized image coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarkSet is the pose seen in a single frame.
// Present is false when the detector found no person; in that case Points is empty.
// A joint missing from Points was not detected (or not visible enough) in this frame.
type LandmarkSet struct {
	Present bool              `json:"present"`
	Points  map[Joint]Point2D `json:"points,omitempty"`
}

// NotDetected returns the LandmarkSet for a frame without a person in it.
func NotDetected() LandmarkSet {
	return LandmarkSet{}
}

// NewLandmarkSet returns a present, empty set ready to be filled with Set.
func NewLandmarkSet() LandmarkSet {
	return LandmarkSet{
		Present: true,
		Points:  make(map[Joint]Point2D, NumJoints),
	}
}

// Set records the position of a joint. Invalid joints are ignored.
func (s *LandmarkSet) Set(j Joint, p Point2D) {
	if !j.Valid() {
		return
	}
	if s.Points == nil {
		s.Points = make(map[Joint]Point2D, NumJoints)
	}
	s.Points[j] = p
}

// Get returns the position of a joint and whether it was detected.
func (s LandmarkSet) Get(j Joint) (Point2D, bool) {
	p, ok := s.Points[j]
	return p, ok
}

// Has reports whether every given joint is present in the set.
func (s LandmarkSet) Has(joints ...Joint) bool {
	for _, j := range joints {
		if _, ok := s.Points[j]; !ok {
			return false
		}
	}
	return true
}

// Without returns a copy of the set with the given joints removed.
func (s LandmarkSet) Without(joints ...Joint) LandmarkSet {
	out := LandmarkSet{Present: s.Present}
	if s.Points != nil {
		out.Points = make(map[Joint]Point2D, len(s.Points))
		for j, p := range s.Points {
			out.Points[j] = p
		}
	}
	for _, j := range joints {
		delete(out.Points, j)
	}
	return out
}
