package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/repcounter/internal/app"
	"github.com/ayusman/repcounter/internal/capture"
	"github.com/ayusman/repcounter/internal/detector"
	"github.com/ayusman/repcounter/internal/exercise"
	"github.com/ayusman/repcounter/internal/store"
)

var _ Controller = (*app.App)(nil)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// newTestApp creates an App on a blank camera and a detector that sees nobody.
func newTestApp(t *testing.T, s *store.Store) *app.App {
	t.Helper()

	a, err := app.New(app.Config{
		Store:      s,
		Camera:     capture.NewBlankCamera(),
		Detector:   detector.NewMockDetector(),
		Exercise:   exercise.Curl,
		TargetReps: 10,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	t.Cleanup(func() {
		a.Close()
	})
	return a
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestWriteControlError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown exercise", &exercise.UnknownExerciseError{ID: "PLANK"}, http.StatusNotFound},
		{"invalid target", exercise.ErrInvalidTarget, http.StatusBadRequest},
		{"not ready", exercise.ErrNotReady, http.StatusConflict},
		{"exercise active", app.ErrExerciseActive, http.StatusConflict},
		{"no session", app.ErrNoSession, http.StatusConflict},
		{"other", bytes.ErrTooLarge, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeControlError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var resp errorResponse
			decode(t, rec, &resp)
			if resp.Error == "" {
				t.Error("error message should be set")
			}
		})
	}
}
