package server

import (
	"fmt"
	"net/http"
	"time"
)

const streamInterval = 66 * time.Millisecond // ~15 FPS

// PreviewSource keeps the latest camera frame as a JPEG while someone watches.
type PreviewSource interface {
	WatchPreview() func()
	Preview() ([]byte, uint64)
}

// StreamHandler serves the camera preview as MJPEG.
type StreamHandler struct {
	source PreviewSource
}

// NewStreamHandler creates a new StreamHandler with the given preview source.
func NewStreamHandler(source PreviewSource) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams MJPEG frames to connected clients. A frame is only written
// when the pipeline has stored a new one.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	release := h.source.WatchPreview()
	defer release()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame, seq := h.source.Preview()
		if len(frame) == 0 || seq == last {
			continue
		}
		last = seq

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		if _, err := w.Write(frame); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
