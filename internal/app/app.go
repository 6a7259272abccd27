// Package app drives exercise sessions from the camera: it owns the capture
// pipeline, the pose detector and the one running session, and exposes the
// operator controls used by the HTTP server and the tray.
package app

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcounter/internal/capture"
	"github.com/ayusman/repcounter/internal/detector"
	"github.com/ayusman/repcounter/internal/exercise"
	"github.com/ayusman/repcounter/internal/hook"
	"github.com/ayusman/repcounter/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while the user is moving.
	ActiveFPS = 15
)

var (
	// ErrExerciseActive is returned when the selection is changed while an exercise runs.
	ErrExerciseActive = errors.New("an exercise is running")

	// ErrNoSession is returned by controls that need a session when none was started.
	ErrNoSession = errors.New("no exercise session")
)

// Config holds configuration options for the application.
type Config struct {
	// Catalog lists the exercises that can be selected. Defaults to the built-ins.
	Catalog *exercise.Catalog
	// Store persists the operator selection. Optional.
	Store *store.Store
	// Camera defaults to the first local device.
	Camera capture.Camera
	// Detector defaults to MediaPipe when available, otherwise a mock that sees nobody.
	Detector       detector.Detector
	DetectorConfig detector.Config
	// Hooks receives session events. Optional.
	Hooks *hook.Dispatcher

	MotionThreshold float64
	IdleTimeout     time.Duration
	IdleFPS         int
	ActiveFPS       int

	// Exercise and TargetReps are the initial selection, overridden by stored settings.
	Exercise   exercise.ID
	TargetReps int
	// AutoStop ends the session as soon as the target is reached.
	AutoStop bool
}

// App is the external driver of exercise sessions. Every call into the running
// session happens under mu, so frames and operator controls never interleave.
type App struct {
	config   Config
	catalog  *exercise.Catalog
	camera   capture.Camera
	motion   *capture.MotionDetector
	activity *capture.Activity
	detector detector.Detector

	// cameraMu serializes StartCamera and StopCamera.
	cameraMu sync.Mutex

	mu        sync.Mutex
	selected  exercise.ID
	target    int
	session   *exercise.Session
	announced bool
	stopCh    chan struct{}
	doneCh    chan struct{}

	subsMu sync.Mutex
	subs   map[chan Status]struct{}

	previewMu  sync.Mutex
	viewers    int
	preview    []byte
	previewSeq uint64
}

// New creates a new App. The initial selection comes from the store when it
// holds a valid one, otherwise from config.
func New(config Config) (*App, error) {
	if config.Catalog == nil {
		config.Catalog = exercise.DefaultCatalog()
	}
	if config.Camera == nil {
		config.Camera = capture.NewCamera(capture.DefaultCameraConfig())
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.Exercise == "" {
		config.Exercise = exercise.Curl
	}
	if config.TargetReps < 0 {
		return nil, fmt.Errorf("%w: %d", exercise.ErrInvalidTarget, config.TargetReps)
	}
	if _, err := config.Catalog.Lookup(config.Exercise); err != nil {
		return nil, err
	}

	a := &App{
		config:   config,
		catalog:  config.Catalog,
		camera:   config.Camera,
		motion:   capture.NewMotionDetector(config.MotionThreshold),
		activity: capture.NewActivity(config.IdleTimeout),
		detector: config.Detector,
		selected: config.Exercise,
		target:   config.TargetReps,
		subs:     make(map[chan Status]struct{}),
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig); err == nil {
			a.detector = mp
			logrus.Info("using MediaPipe pose detection")
		} else {
			logrus.WithError(err).Warn("MediaPipe not available, using mock detector")
			a.detector = detector.NewMockDetector()
		}
	}

	a.loadSelection()
	return a, nil
}

// loadSelection restores the operator selection saved by a previous run.
func (a *App) loadSelection() {
	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()

	if v, err := settings.Get(store.SettingExercise); err == nil {
		if _, err := a.catalog.Lookup(exercise.ID(v)); err == nil {
			a.selected = exercise.ID(v)
		} else {
			logrus.WithField("exercise", v).Warn("stored exercise is not in the catalog, ignoring")
		}
	}
	if n, err := settings.GetInt(store.SettingTargetReps); err == nil && n >= 0 {
		a.target = n
	}
}

func (a *App) saveSelection() {
	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()
	if err := settings.Set(store.SettingExercise, string(a.selected)); err != nil {
		logrus.WithError(err).Warn("failed to save exercise selection")
	}
	if err := settings.Set(store.SettingTargetReps, strconv.Itoa(a.target)); err != nil {
		logrus.WithError(err).Warn("failed to save target reps")
	}
}

// Catalog returns the exercises that can be selected.
func (a *App) Catalog() *exercise.Catalog {
	return a.catalog
}

// Selection returns the selected exercise and target.
func (a *App) Selection() (exercise.ID, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected, a.target
}

// SelectExercise chooses the exercise used by the next StartExercise.
func (a *App) SelectExercise(id exercise.ID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.exerciseActiveLocked() {
		return ErrExerciseActive
	}
	if _, err := a.catalog.Lookup(id); err != nil {
		return err
	}

	a.selected = id
	a.saveSelection()
	a.publishLocked()
	return nil
}

// SetTargetReps sets the target used by the next StartExercise.
func (a *App) SetTargetReps(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", exercise.ErrInvalidTarget, n)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.exerciseActiveLocked() {
		return ErrExerciseActive
	}

	a.target = n
	a.saveSelection()
	a.publishLocked()
	return nil
}

// StartExercise starts a fresh session for the selected exercise. A session that
// is still running is stopped first. The camera must be running.
func (a *App) StartExercise() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh == nil {
		return exercise.ErrNotReady
	}

	if a.exerciseActiveLocked() {
		a.finishLocked()
	}

	s, err := exercise.Start(a.catalog, a.selected, a.target)
	if err != nil {
		return err
	}
	a.session = s
	a.announced = false

	a.publishLocked()
	return nil
}

// StopExercise stops the running session and returns its summary. Stopping a
// session twice returns the same summary.
func (a *App) StopExercise() (exercise.Summary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return exercise.Summary{}, ErrNoSession
	}
	if !a.session.Active() {
		return a.session.Summary(), nil
	}

	sum := a.finishLocked()
	a.publishLocked()
	return sum, nil
}

// ResetToInitialPosition zeroes the count of the current session and returns it to
// the exercise's initial phase. The camera must be running.
func (a *App) ResetToInitialPosition() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh == nil {
		return exercise.ErrNotReady
	}
	if a.session == nil {
		return ErrNoSession
	}

	a.session.ResetToInitialPosition()
	a.announced = false
	a.publishLocked()
	return nil
}

// finishLocked stops the session, records it and notifies hooks.
func (a *App) finishLocked() exercise.Summary {
	sum := a.session.Stop()

	log := logrus.WithFields(logrus.Fields{
		"session":  sum.SessionID,
		"exercise": sum.Exercise,
		"reps":     sum.Reps,
		"target":   sum.TargetReps,
		"duration": sum.Duration.Round(time.Millisecond),
	})
	if sum.Completed {
		log.Infof("congratulations, you completed %d reps", sum.Reps)
	} else {
		log.Info("exercise ended before the target")
	}

	a.fire(hook.EventSessionStopped, sum)
	return sum
}

func (a *App) fire(event hook.Event, sum exercise.Summary) {
	if a.config.Hooks == nil {
		return
	}
	a.config.Hooks.Fire(hook.NewRequest(event, sum))
}

// feed runs one frame of landmarks through the current session.
func (a *App) feed(landmarks detector.LandmarkSet) exercise.Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return exercise.Outcome{Skipped: true, Reason: exercise.SkipInactive}
	}

	out := a.session.Update(landmarks)
	if out.Skipped {
		if out.Reason != exercise.SkipInactive {
			logrus.WithField("reason", out.Reason).Trace("frame skipped")
		}
		return out
	}

	if out.TargetReached && !a.announced {
		a.announced = true
		sum := a.session.Summary()
		logrus.WithFields(logrus.Fields{
			"session": sum.SessionID,
			"reps":    sum.Reps,
		}).Info("target reached")
		a.fire(hook.EventTargetReached, sum)

		if a.config.AutoStop {
			a.finishLocked()
		}
	}

	a.publishLocked()
	return out
}

func (a *App) exerciseActiveLocked() bool {
	return a.session != nil && a.session.Active()
}

// ExerciseActive reports whether a session is counting.
func (a *App) ExerciseActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exerciseActiveLocked()
}

// CameraOn reports whether the capture pipeline is running.
func (a *App) CameraOn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopCh != nil
}

// StartCamera opens the camera and starts the frame loop. Starting a running
// camera is a no-op.
func (a *App) StartCamera() error {
	a.cameraMu.Lock()
	defer a.cameraMu.Unlock()

	if a.CameraOn() {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("start camera: %w", err)
	}
	a.camera.SetFPS(a.config.IdleFPS)
	a.motion.Reset()
	a.activity.Reset()

	stop := make(chan struct{})
	done := make(chan struct{})

	a.mu.Lock()
	a.stopCh = stop
	a.doneCh = done
	a.publishLocked()
	a.mu.Unlock()

	go a.runPipeline(stop, done)

	logrus.Info("detection pipeline started")
	return nil
}

// StopCamera stops the frame loop and closes the camera. A running exercise is
// stopped too, since nothing could count it.
func (a *App) StopCamera() {
	a.cameraMu.Lock()
	defer a.cameraMu.Unlock()

	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	if stop == nil {
		a.mu.Unlock()
		return
	}
	a.stopCh, a.doneCh = nil, nil
	if a.exerciseActiveLocked() {
		a.finishLocked()
	}
	a.publishLocked()
	a.mu.Unlock()

	close(stop)
	<-done

	if err := a.camera.Close(); err != nil {
		logrus.WithError(err).Warn("error closing camera")
	}
	a.motion.Reset()

	a.previewMu.Lock()
	a.preview = nil
	a.previewMu.Unlock()

	logrus.Info("detection pipeline stopped")
}

// Close stops the pipeline and releases the detector.
func (a *App) Close() error {
	a.StopCamera()
	a.motion.Close()

	a.subsMu.Lock()
	for ch := range a.subs {
		close(ch)
		delete(a.subs, ch)
	}
	a.subsMu.Unlock()

	if err := a.detector.Close(); err != nil {
		return fmt.Errorf("close detector: %w", err)
	}
	return nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}
