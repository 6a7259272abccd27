package exercise

import "fmt"

// Phase is where in a repetition the tracked limb currently is.
type Phase int

const (
	Extended Phase = iota
	Contracted
)

func (p Phase) String() string {
	switch p {
	case Extended:
		return "EXTENDED"
	case Contracted:
		return "CONTRACTED"
	default:
		return "UNKNOWN"
	}
}

// ParsePhase resolves a name produced by Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "EXTENDED":
		return Extended, nil
	case "CONTRACTED":
		return Contracted, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase encoded by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Transition is the result of feeding one angle sample to a Machine.
type Transition struct {
	From    Phase
	To      Phase
	Counted bool // a repetition was counted on this sample
	Reps    int  // rep count after the sample
}

// Changed reports whether the sample moved the machine to another phase.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Machine is the two-phase hysteresis automaton behind rep counting.
//
// From Extended it moves to Contracted, counting one rep, once the angle is strictly
// past the contracted threshold in the contracting direction. From Contracted it
// moves back to Extended once the angle is strictly past the extended threshold in
// the opposite direction. Samples exactly on a threshold never cause a transition.
//
// A Machine is not safe for concurrent use.
type Machine struct {
	initial   Phase
	phase     Phase
	reps      int
	lastAngle float64
	hasAngle  bool
}

// NewMachine returns a machine at the given initial phase with a zero count.
func NewMachine(initial Phase) *Machine {
	return &Machine{
		initial: initial,
		phase:   initial,
	}
}

// Feed consumes one angle sample measured for def.
func (m *Machine) Feed(angle float64, def Definition) Transition {
	t := Transition{From: m.phase}

	switch m.phase {
	case Extended:
		if def.Direction.crossed(angle, def.ContractedThreshold) {
			m.phase = Contracted
			m.reps++
			t.Counted = true
		}
	case Contracted:
		if def.Direction.opposite().crossed(angle, def.ExtendedThreshold) {
			m.phase = Extended
		}
	}

	m.lastAngle = angle
	m.hasAngle = true

	t.To = m.phase
	t.Reps = m.reps
	return t
}

// Reset puts the machine back to its initial phase with a zero count.
func (m *Machine) Reset() {
	m.phase = m.initial
	m.reps = 0
	m.lastAngle = 0
	m.hasAngle = false
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Reps returns the number of repetitions counted since creation or the last Reset.
func (m *Machine) Reps() int {
	return m.reps
}

// InitialPhase returns the phase Reset returns to.
func (m *Machine) InitialPhase() Phase {
	return m.initial
}

// LastAngle returns the most recent angle fed to the machine, if any.
// It is kept for diagnostics only.
func (m *Machine) LastAngle() (float64, bool) {
	return m.lastAngle, m.hasAngle
}
