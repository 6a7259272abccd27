// Package exercise counts repetitions of an exercise from per-frame body landmarks.
//
// A repetition is detected from the angle at one joint (for example the elbow for a
// curl) using two thresholds: the angle must cross the contracted threshold to count
// a rep and must then cross back past the extended threshold before the next rep can
// be counted. Noise around a single cutoff therefore never produces double counts.
package exercise

import (
	"math"

	"github.com/ayusman/repcounter/internal/detector"
)

// ComputeAngle returns the angle in degrees at vertex b formed by points a and c.
// The result is always in [0, 180]. Degenerate input (coincident points) yields
// whatever atan2 produces for zero-length vectors rather than an error.
func ComputeAngle(a, b, c detector.Point2D) float64 {
	radians := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)

	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180.0 {
		angle = 360.0 - angle
	}

	return angle
}
