package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/repcounter/internal/detector"
	"github.com/ayusman/repcounter/internal/exercise"
)

// Exercise is a custom exercise definition stored in the database.
type Exercise struct {
	exercise.Definition
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExerciseRepository provides CRUD operations for custom exercises.
type ExerciseRepository struct {
	db *sql.DB
}

// Exercises returns the exercise repository for this store.
func (s *Store) Exercises() *ExerciseRepository {
	return &ExerciseRepository{db: s.db}
}

const exerciseColumns = `id, name, joint_a, joint_vertex, joint_b, contracted_threshold, extended_threshold,
	direction, initial_phase, label_extended, label_contracted, created_at, updated_at`

// Create validates and inserts a new exercise. It fails with ErrExists when the id is taken.
func (r *ExerciseRepository) Create(e *Exercise) error {
	if err := e.Validate(); err != nil {
		return err
	}

	if _, err := r.GetByID(e.ID); err == nil {
		return fmt.Errorf("exercise %s: %w", e.ID, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO exercises (`+exerciseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID), e.Name,
		e.Joints.A.String(), e.Joints.Vertex.String(), e.Joints.B.String(),
		e.ContractedThreshold, e.ExtendedThreshold,
		e.Direction.String(), e.InitialPhase.String(),
		e.Labels.Extended, e.Labels.Contracted,
		e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// GetByID retrieves an exercise by its ID.
func (r *ExerciseRepository) GetByID(id exercise.ID) (*Exercise, error) {
	row := r.db.QueryRow(`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, string(id))

	e, err := scanExercise(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List retrieves all exercises in creation order.
func (r *ExerciseRepository) List() ([]*Exercise, error) {
	rows, err := r.db.Query(`SELECT ` + exerciseColumns + ` FROM exercises ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exercises []*Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}

// Definitions returns the stored exercises as plain definitions, ready for a catalog.
func (r *ExerciseRepository) Definitions() ([]exercise.Definition, error) {
	list, err := r.List()
	if err != nil {
		return nil, err
	}
	defs := make([]exercise.Definition, 0, len(list))
	for _, e := range list {
		defs = append(defs, e.Definition)
	}
	return defs, nil
}

// Update validates and replaces an existing exercise.
func (r *ExerciseRepository) Update(e *Exercise) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE exercises SET name = ?, joint_a = ?, joint_vertex = ?, joint_b = ?,
		 contracted_threshold = ?, extended_threshold = ?, direction = ?, initial_phase = ?,
		 label_extended = ?, label_contracted = ?, updated_at = ?
		 WHERE id = ?`,
		e.Name,
		e.Joints.A.String(), e.Joints.Vertex.String(), e.Joints.B.String(),
		e.ContractedThreshold, e.ExtendedThreshold,
		e.Direction.String(), e.InitialPhase.String(),
		e.Labels.Extended, e.Labels.Contracted,
		e.UpdatedAt, string(e.ID),
	)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// Delete removes an exercise from the database by its ID.
func (r *ExerciseRepository) Delete(id exercise.ID) error {
	result, err := r.db.Exec(`DELETE FROM exercises WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return affectedOne(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row rowScanner) (*Exercise, error) {
	var (
		e                       Exercise
		id                      string
		jointA, jointV, jointB  string
		direction, initialPhase string
	)

	err := row.Scan(&id, &e.Name, &jointA, &jointV, &jointB,
		&e.ContractedThreshold, &e.ExtendedThreshold,
		&direction, &initialPhase,
		&e.Labels.Extended, &e.Labels.Contracted,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.ID = exercise.ID(id)

	for _, j := range []struct {
		name string
		dst  *detector.Joint
	}{
		{jointA, &e.Joints.A},
		{jointV, &e.Joints.Vertex},
		{jointB, &e.Joints.B},
	} {
		joint, ok := detector.ParseJoint(j.name)
		if !ok {
			return nil, fmt.Errorf("exercise %s: unknown joint %q", id, j.name)
		}
		*j.dst = joint
	}

	if e.Direction, err = exercise.ParseDirection(direction); err != nil {
		return nil, fmt.Errorf("exercise %s: %w", id, err)
	}
	if e.InitialPhase, err = exercise.ParsePhase(initialPhase); err != nil {
		return nil, fmt.Errorf("exercise %s: %w", id, err)
	}

	return &e, nil
}
