package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/repcounter/internal/exercise"
)

// SessionHandler handles /api/session: the selection and the session controls.
type SessionHandler struct {
	ctrl Controller
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ctrl Controller) *SessionHandler {
	return &SessionHandler{ctrl: ctrl}
}

// ServeHTTP routes /api/session and /api/session/{action}.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, h.ctrl.Status())
		case http.MethodPut:
			h.selectExercise(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch path {
	case "start":
		if err := h.ctrl.StartExercise(); err != nil {
			writeControlError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	case "stop":
		sum, err := h.ctrl.StopExercise()
		if err != nil {
			writeControlError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSummaryResponse(sum))
	case "reset":
		if err := h.ctrl.ResetToInitialPosition(); err != nil {
			writeControlError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	default:
		writeError(w, http.StatusNotFound, "Unknown session action")
	}
}

type selectRequest struct {
	Exercise   *exercise.ID `json:"exercise"`
	TargetReps *int         `json:"target_reps"`
}

type summaryResponse struct {
	SessionID  string      `json:"session_id"`
	Exercise   exercise.ID `json:"exercise"`
	Reps       int         `json:"reps"`
	TargetReps int         `json:"target_reps"`
	Completed  bool        `json:"completed"`
	StartedAt  string      `json:"started_at"`
	DurationMs int64       `json:"duration_ms"`
}


func toSummaryResponse(sum exercise.Summary) summaryResponse {
	return summaryResponse{
		SessionID:  sum.SessionID,
		Exercise:   sum.Exercise,
		Reps:       sum.Reps,
		TargetReps: sum.TargetReps,
		Completed:  sum.Completed,
		StartedAt:  sum.StartedAt.Format(time.RFC3339),
		DurationMs: sum.Duration.Milliseconds(),
	}
}

// selectExercise handles PUT /api/session. Either field may be omitted.
func (h *SessionHandler) selectExercise(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Exercise == nil && req.TargetReps == nil {
		writeError(w, http.StatusBadRequest, "exercise or target_reps is required")
		return
	}

	if req.Exercise != nil {
		id := exercise.ID(strings.ToUpper(string(*req.Exercise)))
		if err := h.ctrl.SelectExercise(id); err != nil {
			writeControlError(w, err)
			return
		}
	}
	if req.TargetReps != nil {
		if err := h.ctrl.SetTargetReps(*req.TargetReps); err != nil {
			writeControlError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, h.ctrl.Status())
}
