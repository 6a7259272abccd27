package app

import (
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// runPipeline is the frame loop. It runs until stop is closed and closes done on exit.
//
// Pipeline logic:
// 1. Start in idle mode at IdleFPS
// 2. On motion, switch to active mode at ActiveFPS
// 3. While active and an exercise runs, detect the pose and feed the session
// 4. After the idle timeout without motion, switch back to idle mode
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if fps, changed := a.processFrame(); changed {
				ticker.Reset(time.Second / time.Duration(fps))
			}
		}
	}
}

// processFrame handles one camera frame. It returns the new frame rate when the
// idle/active mode changed.
func (a *App) processFrame() (fps int, changed bool) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		logrus.WithError(err).Debug("error reading frame")
		return 0, false
	}
	defer frame.Close()

	a.updatePreview(frame)

	motion, _ := a.motion.Detect(frame)
	active, changed := a.activity.Observe(motion)
	if changed {
		fps = a.config.IdleFPS
		if active {
			fps = a.config.ActiveFPS
		}
		a.camera.SetFPS(fps)
		logrus.WithFields(logrus.Fields{
			"active": active,
			"fps":    fps,
		}).Debug("pipeline mode changed")
	}

	if !active || !a.ExerciseActive() {
		return fps, changed
	}

	landmarks, err := a.detector.Detect(frame)
	if err != nil {
		logrus.WithError(err).Warn("error detecting pose")
		return fps, changed
	}

	a.feed(landmarks)
	return fps, changed
}

// WatchPreview asks the pipeline to keep a JPEG of the latest frame. The returned
// function releases the request.
func (a *App) WatchPreview() func() {
	a.previewMu.Lock()
	a.viewers++
	a.previewMu.Unlock()

	var once bool
	return func() {
		a.previewMu.Lock()
		defer a.previewMu.Unlock()
		if once {
			return
		}
		once = true
		a.viewers--
		if a.viewers == 0 {
			a.preview = nil
		}
	}
}

// Preview returns the latest JPEG frame and its sequence number. The sequence
// number changes whenever a new frame is stored.
func (a *App) Preview() ([]byte, uint64) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()
	return a.preview, a.previewSeq
}

func (a *App) updatePreview(frame *gocv.Mat) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()

	if a.viewers == 0 {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		logrus.WithError(err).Debug("error encoding preview")
		return
	}
	a.preview = append([]byte(nil), buf.GetBytes()...)
	buf.Close()
	a.previewSeq++
}
