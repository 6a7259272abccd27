package exercise

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcounter/internal/detector"
)

var (
	// ErrNotReady is returned by callers when the detection pipeline upstream of a
	// session (camera and pose detector) is not running.
	ErrNotReady = errors.New("detection pipeline is not running")

	// ErrInvalidTarget is returned for a negative target rep count.
	ErrInvalidTarget = errors.New("target reps must not be negative")
)

// SkipReason explains why an Update contributed nothing.
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipInactive     SkipReason = "inactive"
	SkipNotDetected  SkipReason = "not_detected"
	SkipMissingJoint SkipReason = "missing_joint"
)

// Outcome is the result of one Update call. Phase, Label, Reps and TargetReached
// always describe the session state after the call, whether or not it was skipped.
type Outcome struct {
	Skipped       bool
	Reason        SkipReason
	Angle         float64 // measured angle; zero when skipped
	Transition    Transition
	Phase         Phase
	Label         string
	Reps          int
	TargetReached bool
}

// Summary describes a finished session.
type Summary struct {
	SessionID  string
	Exercise   ID
	Reps       int
	TargetReps int
	Completed  bool
	StartedAt  time.Time
	Duration   time.Duration
}

// Session counts repetitions of one exercise towards a target.
//
// A Session owns its Machine exclusively. It performs no locking: callers that
// drive it from more than one goroutine must serialize Update,
// ResetToInitialPosition and Stop themselves.
type Session struct {
	id        string
	def       Definition
	target    int
	machine   *Machine
	active    bool
	startedAt time.Time
	stoppedAt time.Time
	now       func() time.Time
	log       *logrus.Entry
}

// Start looks up the exercise in catalog and returns an active session at the
// exercise's initial phase with a zero count.
func Start(catalog *Catalog, id ID, targetReps int) (*Session, error) {
	if targetReps < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTarget, targetReps)
	}

	def, err := catalog.Lookup(id)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:      uuid.NewString(),
		def:     def,
		target:  targetReps,
		machine: NewMachine(def.InitialPhase),
		active:  true,
		now:     time.Now,
	}
	s.startedAt = s.now()
	s.log = logrus.WithFields(logrus.Fields{
		"session":  s.id,
		"exercise": def.ID,
	})

	s.log.WithField("target", targetReps).Info("exercise started")
	return s, nil
}

// Update feeds one frame of landmarks into the session.
//
// The frame is skipped, leaving phase and count unchanged, when the session is not
// active, when no person was detected, or when any of the exercise's three joints is
// missing.
func (s *Session) Update(landmarks detector.LandmarkSet) Outcome {
	switch {
	case !s.active:
		return s.skipped(SkipInactive)
	case !landmarks.Present:
		return s.skipped(SkipNotDetected)
	}

	a, okA := landmarks.Get(s.def.Joints.A)
	b, okB := landmarks.Get(s.def.Joints.Vertex)
	c, okC := landmarks.Get(s.def.Joints.B)
	if !okA || !okB || !okC {
		return s.skipped(SkipMissingJoint)
	}

	angle := ComputeAngle(a, b, c)
	t := s.machine.Feed(angle, s.def)

	if t.Changed() {
		s.log.WithFields(logrus.Fields{
			"angle": fmt.Sprintf("%.1f", angle),
			"phase": t.To,
			"reps":  t.Reps,
		}).Debug("phase changed")
	}

	out := s.outcome()
	out.Angle = angle
	out.Transition = t
	return out
}

func (s *Session) skipped(reason SkipReason) Outcome {
	out := s.outcome()
	out.Skipped = true
	out.Reason = reason
	out.Transition = Transition{From: s.machine.Phase(), To: s.machine.Phase(), Reps: s.machine.Reps()}
	return out
}

func (s *Session) outcome() Outcome {
	return Outcome{
		Phase:         s.machine.Phase(),
		Label:         s.PhaseLabel(),
		Reps:          s.machine.Reps(),
		TargetReached: s.IsComplete(),
	}
}

// ResetToInitialPosition zeroes the count and returns to the initial phase.
// It may be called whether or not the session is active.
func (s *Session) ResetToInitialPosition() {
	s.machine.Reset()
	s.log.Info("reset to initial position")
}

// Stop deactivates the session and returns its summary. The final count is kept.
// Stopping an already stopped session returns the same summary again.
func (s *Session) Stop() Summary {
	if s.active {
		s.active = false
		s.stoppedAt = s.now()
		s.log.WithFields(logrus.Fields{
			"reps":   s.machine.Reps(),
			"target": s.target,
		}).Info("exercise stopped")
	}
	return s.Summary()
}

// Summary describes the session so far.
func (s *Session) Summary() Summary {
	end := s.stoppedAt
	if s.active {
		end = s.now()
	}
	return Summary{
		SessionID:  s.id,
		Exercise:   s.def.ID,
		Reps:       s.machine.Reps(),
		TargetReps: s.target,
		Completed:  s.IsComplete(),
		StartedAt:  s.startedAt,
		Duration:   end.Sub(s.startedAt),
	}
}

// IsComplete reports whether the rep count has reached the target.
func (s *Session) IsComplete() bool {
	return s.machine.Reps() >= s.target
}

// PhaseLabel returns the exercise-specific display string for the current phase.
func (s *Session) PhaseLabel() string {
	return s.def.Label(s.machine.Phase())
}

// ID returns the unique id of this session.
func (s *Session) ID() string { return s.id }

// Definition returns the exercise being counted.
func (s *Session) Definition() Definition { return s.def }

// TargetReps returns the configured target.
func (s *Session) TargetReps() int { return s.target }

// Active reports whether the session still accepts updates.
func (s *Session) Active() bool { return s.active }

// Reps returns the current rep count.
func (s *Session) Reps() int { return s.machine.Reps() }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.machine.Phase() }

// LastAngle returns the last measured angle, if any.
func (s *Session) LastAngle() (float64, bool) { return s.machine.LastAngle() }
