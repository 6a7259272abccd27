package api

import (
	"net/http"
	"strings"
)

// CameraHandler handles POST /api/camera/start and /api/camera/stop.
type CameraHandler struct {
	ctrl Controller
}

// NewCameraHandler creates a new CameraHandler.
func NewCameraHandler(ctrl Controller) *CameraHandler {
	return &CameraHandler{ctrl: ctrl}
}

func (h *CameraHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/camera/") {
	case "start":
		if err := h.ctrl.StartCamera(); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	case "stop":
		h.ctrl.StopCamera()
	default:
		writeError(w, http.StatusNotFound, "Unknown camera action")
		return
	}

	writeJSON(w, http.StatusOK, h.ctrl.Status())
}
