package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/repcounter/internal/exercise"
	"github.com/ayusman/repcounter/internal/store"
)

// ExerciseHandler handles /api/exercises. The catalog is fixed for the life of
// the process, so custom exercises created here are stored and take effect on
// the next start.
type ExerciseHandler struct {
	catalog *exercise.Catalog
	store   *store.Store
}

// NewExerciseHandler creates an ExerciseHandler. Without a store the handler is read-only.
func NewExerciseHandler(catalog *exercise.Catalog, s *store.Store) *ExerciseHandler {
	return &ExerciseHandler{catalog: catalog, store: s}
}

// ServeHTTP routes /api/exercises and /api/exercises/{id}.
func (h *ExerciseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/exercises")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := exercise.ID(strings.ToUpper(path))
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type exerciseResponse struct {
	exercise.Definition
	// Custom is set for exercises stored by the operator.
	Custom bool `json:"custom"`
	// Loaded is false for stored exercises added after startup.
	Loaded bool `json:"loaded"`
}

type listExercisesResponse struct {
	Exercises []exerciseResponse `json:"exercises"`
}

func (h *ExerciseHandler) stored() (map[exercise.ID]*store.Exercise, []*store.Exercise, error) {
	if h.store == nil {
		return nil, nil, nil
	}
	list, err := h.store.Exercises().List()
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[exercise.ID]*store.Exercise, len(list))
	for _, e := range list {
		byID[e.ID] = e
	}
	return byID, list, nil
}

// list handles GET /api/exercises: the catalog followed by stored exercises
// that are not loaded yet.
func (h *ExerciseHandler) list(w http.ResponseWriter, r *http.Request) {
	byID, stored, err := h.stored()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list exercises")
		return
	}

	response := listExercisesResponse{
		Exercises: make([]exerciseResponse, 0, h.catalog.Len()),
	}
	for _, def := range h.catalog.List() {
		_, custom := byID[def.ID]
		response.Exercises = append(response.Exercises, exerciseResponse{Definition: def, Custom: custom, Loaded: true})
	}
	for _, e := range stored {
		if _, err := h.catalog.Lookup(e.ID); err == nil {
			continue
		}
		response.Exercises = append(response.Exercises, exerciseResponse{Definition: e.Definition, Custom: true})
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/exercises/{id}.
func (h *ExerciseHandler) get(w http.ResponseWriter, r *http.Request, id exercise.ID) {
	byID, _, err := h.stored()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get exercise")
		return
	}
	_, custom := byID[id]

	if def, err := h.catalog.Lookup(id); err == nil {
		writeJSON(w, http.StatusOK, exerciseResponse{Definition: def, Custom: custom, Loaded: true})
		return
	}
	if e, ok := byID[id]; ok {
		writeJSON(w, http.StatusOK, exerciseResponse{Definition: e.Definition, Custom: true})
		return
	}
	writeError(w, http.StatusNotFound, "Exercise not found")
}

// create handles POST /api/exercises and stores a custom exercise.
// An empty id gets a generated one.
func (h *ExerciseHandler) create(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Custom exercises are not available")
		return
	}

	var def exercise.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if def.ID == "" {
		def.ID = exercise.ID("CUSTOM_" + strings.ToUpper(uuid.New().String()[:8]))
	}
	def.ID = exercise.ID(strings.ToUpper(string(def.ID)))
	if def.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if _, err := h.catalog.Lookup(def.ID); err == nil {
		writeError(w, http.StatusConflict, "Exercise already exists")
		return
	}

	e := &store.Exercise{Definition: def}
	if err := h.store.Exercises().Create(e); err != nil {
		if errors.Is(err, store.ErrExists) {
			writeError(w, http.StatusConflict, "Exercise already exists")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, exerciseResponse{Definition: e.Definition, Custom: true})
}

// delete handles DELETE /api/exercises/{id}. Built-in exercises cannot be deleted.
func (h *ExerciseHandler) delete(w http.ResponseWriter, r *http.Request, id exercise.ID) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Custom exercises are not available")
		return
	}

	err := h.store.Exercises().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if _, lookupErr := h.catalog.Lookup(id); lookupErr == nil {
				writeError(w, http.StatusForbidden, "Built-in exercises cannot be deleted")
				return
			}
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete exercise")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
