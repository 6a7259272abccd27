package app

import (
	"github.com/ayusman/repcounter/internal/exercise"
)

// statusBuffer is how many snapshots a slow subscriber may fall behind before
// further snapshots are dropped for it.
const statusBuffer = 16

// Status is a snapshot of what the operator sees.
type Status struct {
	SessionID     string         `json:"session_id,omitempty"`
	Exercise      exercise.ID    `json:"exercise"`
	Label         string         `json:"label"`
	Phase         exercise.Phase `json:"phase"`
	Reps          int            `json:"reps"`
	TargetReps    int            `json:"target_reps"`
	TargetReached bool           `json:"target_reached"`
	Active        bool           `json:"active"`
	CameraOn      bool           `json:"camera_on"`
	Angle         *float64       `json:"angle,omitempty"`
}

// Status returns the current snapshot.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusLocked()
}

func (a *App) statusLocked() Status {
	st := Status{CameraOn: a.stopCh != nil}

	if a.session == nil {
		// Nothing started yet: show the selection at rest.
		def, _ := a.catalog.Lookup(a.selected)
		st.Exercise = a.selected
		st.TargetReps = a.target
		st.Phase = def.InitialPhase
		st.Label = def.Label(def.InitialPhase)
		return st
	}

	st.SessionID = a.session.ID()
	st.Exercise = a.session.Definition().ID
	st.Label = a.session.PhaseLabel()
	st.Phase = a.session.Phase()
	st.Reps = a.session.Reps()
	st.TargetReps = a.session.TargetReps()
	st.TargetReached = a.session.IsComplete()
	st.Active = a.session.Active()
	if angle, ok := a.session.LastAngle(); ok {
		st.Angle = &angle
	}
	return st
}

// Subscribe returns a channel receiving a Status after every processed frame and
// every control change. The returned function unsubscribes and closes the channel.
func (a *App) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, statusBuffer)

	a.subsMu.Lock()
	a.subs[ch] = struct{}{}
	a.subsMu.Unlock()

	return ch, func() {
		a.subsMu.Lock()
		defer a.subsMu.Unlock()
		if _, ok := a.subs[ch]; ok {
			delete(a.subs, ch)
			close(ch)
		}
	}
}

func (a *App) publishLocked() {
	st := a.statusLocked()

	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	for ch := range a.subs {
		select {
		case ch <- st:
		default:
		}
	}
}
