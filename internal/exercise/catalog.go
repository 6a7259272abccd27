package exercise

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ayusman/repcounter/internal/detector"
)

// ID identifies an exercise definition, e.g. "CURL".
type ID string

// Built-in exercises.
const (
	Curl        ID = "CURL"
	Squat       ID = "SQUAT"
	JumpingJack ID = "JUMPING_JACK"
	SitUp       ID = "SIT_UP"
)

// Direction tells which way the joint angle moves when the exercise contracts.
type Direction int

const (
	// AngleDecreases means the contracted phase is reached by the angle falling below its threshold.
	AngleDecreases Direction = iota
	// AngleIncreases means the contracted phase is reached by the angle rising above its threshold.
	AngleIncreases
)

func (d Direction) String() string {
	switch d {
	case AngleDecreases:
		return "ANGLE_DECREASES"
	case AngleIncreases:
		return "ANGLE_INCREASES"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection resolves a name produced by Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "ANGLE_DECREASES":
		return AngleDecreases, nil
	case "ANGLE_INCREASES":
		return AngleIncreases, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// crossed reports whether angle lies strictly past threshold when moving in direction d.
func (d Direction) crossed(angle, threshold float64) bool {
	if d == AngleIncreases {
		return angle > threshold
	}
	return angle < threshold
}

func (d Direction) opposite() Direction {
	if d == AngleIncreases {
		return AngleDecreases
	}
	return AngleIncreases
}

// JointTriple names the three landmarks an exercise is measured on.
// The angle is taken at Vertex.
type JointTriple struct {
	A      detector.Joint `json:"a"`
	Vertex detector.Joint `json:"vertex"`
	B      detector.Joint `json:"b"`
}

// Joints returns the triple as a slice in A, Vertex, B order.
func (t JointTriple) Joints() []detector.Joint {
	return []detector.Joint{t.A, t.Vertex, t.B}
}

// PhaseLabels are the display strings used for each phase of an exercise.
type PhaseLabels struct {
	Extended   string `json:"extended"`
	Contracted string `json:"contracted"`
}

// Definition describes how to count one exercise. Definitions are immutable values.
type Definition struct {
	ID                  ID          `json:"id"`
	Name                string      `json:"name"`
	Joints              JointTriple `json:"joints"`
	ContractedThreshold float64     `json:"contracted_threshold"`
	ExtendedThreshold   float64     `json:"extended_threshold"`
	Direction           Direction   `json:"direction"`
	InitialPhase        Phase       `json:"initial_phase"`
	Labels              PhaseLabels `json:"labels"`
}

// Label returns the display string for phase p.
func (d Definition) Label(p Phase) string {
	if p == Contracted {
		return d.Labels.Contracted
	}
	return d.Labels.Extended
}

// Validate checks that the definition can drive a Machine.
// The two thresholds must differ and be ordered so that contracting moves the angle
// past the contracted threshold before the extended one, otherwise the hysteresis
// band would be empty or inverted.
func (d Definition) Validate() error {
	if d.ID == "" {
		return errors.New("exercise id is required")
	}
	for _, j := range d.Joints.Joints() {
		if !j.Valid() {
			return fmt.Errorf("exercise %s: invalid joint %d", d.ID, j)
		}
	}
	if d.Joints.A == d.Joints.Vertex || d.Joints.B == d.Joints.Vertex || d.Joints.A == d.Joints.B {
		return fmt.Errorf("exercise %s: joints must be distinct", d.ID)
	}
	if d.ContractedThreshold == d.ExtendedThreshold {
		return fmt.Errorf("exercise %s: thresholds must differ", d.ID)
	}
	for _, th := range []float64{d.ContractedThreshold, d.ExtendedThreshold} {
		if th < 0 || th > 180 {
			return fmt.Errorf("exercise %s: threshold %.1f outside [0, 180]", d.ID, th)
		}
	}
	switch d.Direction {
	case AngleDecreases:
		if d.ContractedThreshold > d.ExtendedThreshold {
			return fmt.Errorf("exercise %s: contracted threshold must be below extended threshold", d.ID)
		}
	case AngleIncreases:
		if d.ContractedThreshold < d.ExtendedThreshold {
			return fmt.Errorf("exercise %s: contracted threshold must be above extended threshold", d.ID)
		}
	default:
		return fmt.Errorf("exercise %s: unknown direction %d", d.ID, d.Direction)
	}
	if d.InitialPhase != Extended && d.InitialPhase != Contracted {
		return fmt.Errorf("exercise %s: unknown initial phase %d", d.ID, d.InitialPhase)
	}
	return nil
}

// UnknownExerciseError is returned when an exercise id is not in the catalog.
type UnknownExerciseError struct {
	ID ID
}

func (e *UnknownExerciseError) Error() string {
	return fmt.Sprintf("unknown exercise %q", e.ID)
}

// Builtin returns the definitions shipped with the application.
func Builtin() []Definition {
	return []Definition{
		{
			ID:                  Curl,
			Name:                "Bicep Curl",
			Joints:              JointTriple{A: detector.RightShoulder, Vertex: detector.RightElbow, B: detector.RightWrist},
			ContractedThreshold: 40,
			ExtendedThreshold:   160,
			Direction:           AngleDecreases,
			InitialPhase:        Extended,
			Labels:              PhaseLabels{Extended: "RELAXED", Contracted: "CONTRACTED"},
		},
		{
			ID:                  Squat,
			Name:                "Squat",
			Joints:              JointTriple{A: detector.RightHip, Vertex: detector.RightKnee, B: detector.RightAnkle},
			ContractedThreshold: 90,
			ExtendedThreshold:   170,
			Direction:           AngleDecreases,
			InitialPhase:        Extended,
			Labels:              PhaseLabels{Extended: "RELAXED", Contracted: "CONTRACTED"},
		},
		{
			ID:                  JumpingJack,
			Name:                "Jumping Jack",
			Joints:              JointTriple{A: detector.RightHip, Vertex: detector.RightShoulder, B: detector.RightWrist},
			ContractedThreshold: 140,
			ExtendedThreshold:   40,
			Direction:           AngleIncreases,
			InitialPhase:        Extended,
			Labels:              PhaseLabels{Extended: "DOWN", Contracted: "UP"},
		},
		{
			ID:                  SitUp,
			Name:                "Sit-up",
			Joints:              JointTriple{A: detector.RightShoulder, Vertex: detector.RightHip, B: detector.RightKnee},
			ContractedThreshold: 90,
			ExtendedThreshold:   150,
			Direction:           AngleDecreases,
			InitialPhase:        Contracted,
			Labels:              PhaseLabels{Extended: "LYING", Contracted: "UP"},
		},
	}
}

// Catalog is a read-only table of exercise definitions.
// It is filled once by NewCatalog and never modified afterwards, so it is safe
// for concurrent readers.
type Catalog struct {
	defs  map[ID]Definition
	order []ID
}

// NewCatalog validates the definitions and builds a catalog from them.
// Definitions keep the order they were given in.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{
		defs:  make(map[ID]Definition, len(defs)),
		order: make([]ID, 0, len(defs)),
	}

	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise %s", d.ID)
		}
		c.defs[d.ID] = d
		c.order = append(c.order, d.ID)
	}

	return c, nil
}

// DefaultCatalog returns a catalog with the built-in exercises.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Builtin()...)
	if err != nil {
		panic(fmt.Sprintf("builtin exercises are invalid: %v", err))
	}
	return c
}

// Lookup returns the definition registered under id.
// It fails with *UnknownExerciseError if id is not registered.
func (c *Catalog) Lookup(id ID) (Definition, error) {
	d, ok := c.defs[id]
	if !ok {
		return Definition{}, &UnknownExerciseError{ID: id}
	}
	return d, nil
}

// List returns all definitions in registration order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// IDs returns the registered ids sorted alphabetically.
func (c *Catalog) IDs() []ID {
	ids := append([]ID(nil), c.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered exercises.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Thresholds holds a tuned pair of thresholds for an exercise.
type Thresholds struct {
	Contracted float64
	Extended   float64
}

// WithThresholds returns copies of defs where each definition named in overrides
// has its thresholds replaced. Unknown ids in overrides are reported as errors.
func WithThresholds(defs []Definition, overrides map[ID]Thresholds) ([]Definition, error) {
	out := append([]Definition(nil), defs...)
	seen := make(map[ID]bool, len(overrides))

	for i := range out {
		th, ok := overrides[out[i].ID]
		if !ok {
			continue
		}
		out[i].ContractedThreshold = th.Contracted
		out[i].ExtendedThreshold = th.Extended
		seen[out[i].ID] = true
	}

	for id := range overrides {
		if !seen[id] {
			return nil, &UnknownExerciseError{ID: id}
		}
	}

	return out, nil
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction encoded by MarshalText.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
