// Package api provides HTTP API handlers for the rep counter.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/repcounter/internal/app"
	"github.com/ayusman/repcounter/internal/exercise"
)

// Controller is the operator surface of the application.
type Controller interface {
	Catalog() *exercise.Catalog
	Status() app.Status
	SelectExercise(id exercise.ID) error
	SetTargetReps(n int) error
	StartExercise() error
	StopExercise() (exercise.Summary, error)
	ResetToInitialPosition() error
	StartCamera() error
	StopCamera()
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeControlError maps an operator control failure to a status code.
func writeControlError(w http.ResponseWriter, err error) {
	var unknown *exercise.UnknownExerciseError
	switch {
	case errors.As(err, &unknown):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, exercise.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, exercise.ErrNotReady),
		errors.Is(err, app.ErrExerciseActive),
		errors.Is(err, app.ErrNoSession):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
