// Package hook discovers and runs external programs that react to exercise
// session events.
package hook

import (
	"slices"

	"github.com/ayusman/repcounter/internal/exercise"
)

// Event names a session event hooks can subscribe to.
type Event string

const (
	// EventTargetReached fires once per session when the rep count reaches the target.
	EventTargetReached Event = "target_reached"
	// EventSessionStopped fires when a session ends, for any reason.
	EventSessionStopped Event = "session_stopped"
)

// ManifestFile is the name of the manifest inside each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook's metadata and the events it handles.
type Manifest struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	Description string  `json:"description,omitempty"`
	Executable  string  `json:"executable"`
	Events      []Event `json:"events"`
}

// Request is sent to a hook on stdin.
type Request struct {
	Event      Event       `json:"event"`
	SessionID  string      `json:"session_id"`
	Exercise   exercise.ID `json:"exercise"`
	Reps       int         `json:"reps"`
	TargetReps int         `json:"target_reps"`
	DurationMs int64       `json:"duration_ms"`
}

// NewRequest builds the request for event from a session summary.
func NewRequest(event Event, sum exercise.Summary) *Request {
	return &Request{
		Event:      event,
		SessionID:  sum.SessionID,
		Exercise:   sum.Exercise,
		Reps:       sum.Reps,
		TargetReps: sum.TargetReps,
		DurationMs: sum.Duration.Milliseconds(),
	}
}

// Response is read from a hook's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribed to event.
func (h *Hook) Handles(event Event) bool {
	return slices.Contains(h.Manifest.Events, event)
}
