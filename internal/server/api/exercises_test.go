package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/ayusman/repcounter/internal/detector"
	"github.com/ayusman/repcounter/internal/exercise"
)

func pushUpDefinition() exercise.Definition {
	return exercise.Definition{
		ID:   "PUSH_UP",
		Name: "Push-up",
		Joints: exercise.JointTriple{
			A:      detector.RightShoulder,
			Vertex: detector.RightElbow,
			B:      detector.RightWrist,
		},
		ContractedThreshold: 80,
		ExtendedThreshold:   155,
		Direction:           exercise.AngleDecreases,
		InitialPhase:        exercise.Extended,
		Labels:              exercise.PhaseLabels{Extended: "UP", Contracted: "DOWN"},
	}
}

func TestExerciseHandler_List(t *testing.T) {
	handler := NewExerciseHandler(exercise.DefaultCatalog(), newTestStore(t))

	rec := do(t, handler, http.MethodGet, "/api/exercises", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listExercisesResponse
	decode(t, rec, &response)
	if len(response.Exercises) != 4 {
		t.Fatalf("expected 4 exercises, got %d", len(response.Exercises))
	}

	first := response.Exercises[0]
	if first.ID != exercise.Curl || first.Custom || !first.Loaded {
		t.Errorf("first exercise = %+v", first)
	}
	if first.Joints.Vertex != detector.RightElbow {
		t.Errorf("curl vertex = %v, want RIGHT_ELBOW", first.Joints.Vertex)
	}
}

func TestExerciseHandler_ListEncodesNames(t *testing.T) {
	handler := NewExerciseHandler(exercise.DefaultCatalog(), nil)

	rec := do(t, handler, http.MethodGet, "/api/exercises/sit_up", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{`"vertex":"RIGHT_HIP"`, `"direction":"ANGLE_DECREASES"`, `"initial_phase":"CONTRACTED"`} {
		if !strings.Contains(body, want) {
			t.Errorf("response %s should contain %s", body, want)
		}
	}
}

func TestExerciseHandler_CreateAndDelete(t *testing.T) {
	s := newTestStore(t)
	handler := NewExerciseHandler(exercise.DefaultCatalog(), s)

	rec := do(t, handler, http.MethodPost, "/api/exercises", pushUpDefinition())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created exerciseResponse
	decode(t, rec, &created)
	if created.ID != "PUSH_UP" || !created.Custom || created.Loaded {
		t.Errorf("created = %+v", created)
	}

	// The catalog is fixed, so the new exercise is listed as not loaded yet.
	rec = do(t, handler, http.MethodGet, "/api/exercises", nil)
	var response listExercisesResponse
	decode(t, rec, &response)
	if len(response.Exercises) != 5 {
		t.Fatalf("expected 5 exercises, got %d", len(response.Exercises))
	}
	last := response.Exercises[4]
	if last.ID != "PUSH_UP" || last.Loaded {
		t.Errorf("last exercise = %+v", last)
	}

	rec = do(t, handler, http.MethodGet, "/api/exercises/push_up", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: expected %d, got %d", http.StatusOK, rec.Code)
	}

	rec = do(t, handler, http.MethodDelete, "/api/exercises/PUSH_UP", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected %d, got %d", http.StatusNoContent, rec.Code)
	}
	if _, err := s.Exercises().GetByID("PUSH_UP"); err == nil {
		t.Error("exercise should be gone from the store")
	}

	rec = do(t, handler, http.MethodDelete, "/api/exercises/PUSH_UP", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestExerciseHandler_CreateGeneratesID(t *testing.T) {
	handler := NewExerciseHandler(exercise.DefaultCatalog(), newTestStore(t))

	def := pushUpDefinition()
	def.ID = ""
	rec := do(t, handler, http.MethodPost, "/api/exercises", def)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created exerciseResponse
	decode(t, rec, &created)
	if !strings.HasPrefix(string(created.ID), "CUSTOM_") || len(created.ID) != len("CUSTOM_")+8 {
		t.Errorf("generated id = %q", created.ID)
	}
}

func TestExerciseHandler_CreateErrors(t *testing.T) {
	s := newTestStore(t)
	handler := NewExerciseHandler(exercise.DefaultCatalog(), s)

	if rec := do(t, handler, http.MethodPost, "/api/exercises", pushUpDefinition()); rec.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", rec.Code)
	}

	builtin := pushUpDefinition()
	builtin.ID = "curl"

	inverted := pushUpDefinition()
	inverted.ID = "INVERTED"
	inverted.ContractedThreshold = 170

	unnamed := pushUpDefinition()
	unnamed.ID = "UNNAMED"
	unnamed.Name = ""

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"built-in id", builtin, http.StatusConflict},
		{"stored id", pushUpDefinition(), http.StatusConflict},
		{"inverted band", inverted, http.StatusBadRequest},
		{"missing name", unnamed, http.StatusBadRequest},
		{"invalid json", "nope", http.StatusBadRequest},
		{"unknown joint", map[string]interface{}{
			"id": "X", "name": "X",
			"joints": map[string]string{"a": "TAIL", "vertex": "RIGHT_ELBOW", "b": "RIGHT_WRIST"},
		}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, "/api/exercises", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestExerciseHandler_DeleteBuiltin(t *testing.T) {
	handler := NewExerciseHandler(exercise.DefaultCatalog(), newTestStore(t))

	rec := do(t, handler, http.MethodDelete, "/api/exercises/CURL", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestExerciseHandler_WithoutStore(t *testing.T) {
	handler := NewExerciseHandler(exercise.DefaultCatalog(), nil)

	if rec := do(t, handler, http.MethodGet, "/api/exercises", nil); rec.Code != http.StatusOK {
		t.Errorf("list: expected %d, got %d", http.StatusOK, rec.Code)
	}
	if rec := do(t, handler, http.MethodPost, "/api/exercises", pushUpDefinition()); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("create: expected %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if rec := do(t, handler, http.MethodGet, "/api/exercises/PLANK", nil); rec.Code != http.StatusNotFound {
		t.Errorf("get missing: expected %d, got %d", http.StatusNotFound, rec.Code)
	}
	if rec := do(t, handler, http.MethodPut, "/api/exercises/CURL", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("put: expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
