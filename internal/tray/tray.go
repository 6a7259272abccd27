// Package tray provides a system tray interface for the rep counter.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcounter/internal/app"
	"github.com/ayusman/repcounter/internal/exercise"
)

// Controller is the part of the application the tray drives.
type Controller interface {
	Catalog() *exercise.Catalog
	Status() app.Status
	Subscribe() (<-chan app.Status, func())
	SelectExercise(id exercise.ID) error
	StartExercise() error
	StopExercise() (exercise.Summary, error)
	ResetToInitialPosition() error
	StartCamera() error
	StopCamera()
}

// Tray represents the system tray application.
type Tray struct {
	ctrl       Controller
	onSettings func()
	onQuit     func()
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuCamera    *systray.MenuItem
	menuExercises map[exercise.ID]*systray.MenuItem
	menuStart     *systray.MenuItem
	menuReset     *systray.MenuItem
	menuReps      *systray.MenuItem

	unsubscribe func()
}

// New creates a new Tray driving ctrl.
func New(ctrl Controller) *Tray {
	return &Tray{
		ctrl:          ctrl,
		menuExercises: make(map[exercise.ID]*systray.MenuItem),
	}
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("RepCounter")
	systray.SetTooltip("RepCounter")

	t.mu.Lock()
	t.menuCamera = systray.AddMenuItem("Start Camera", "Turn the camera on or off")
	systray.AddSeparator()

	menuExercise := systray.AddMenuItem("Exercise", "Choose the exercise to count")
	for _, def := range t.ctrl.Catalog().List() {
		t.menuExercises[def.ID] = menuExercise.AddSubMenuItem(def.Name, string(def.ID))
	}
	t.menuStart = systray.AddMenuItem("Start Exercise", "Start or stop counting")
	t.menuReset = systray.AddMenuItem("Reset Count", "Return to the starting position")
	systray.AddSeparator()

	t.menuReps = systray.AddMenuItem("Reps: 0", "Current count")
	t.menuReps.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit RepCounter")
	t.mu.Unlock()

	updates, unsubscribe := t.ctrl.Subscribe()
	t.mu.Lock()
	t.unsubscribe = unsubscribe
	t.mu.Unlock()

	t.render(t.ctrl.Status())

	go func() {
		for st := range updates {
			t.render(st)
		}
	}()

	for id, item := range t.menuExercises {
		go func(id exercise.ID, item *systray.MenuItem) {
			for range item.ClickedCh {
				t.handleSelect(id)
			}
		}(id, item)
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuCamera.ClickedCh:
				t.handleCamera()
			case <-t.menuStart.ClickedCh:
				t.handleStart()
			case <-t.menuReset.ClickedCh:
				t.handleReset()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.mu.Lock()
	unsubscribe := t.unsubscribe
	t.unsubscribe = nil
	t.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// render updates every menu item from a snapshot.
func (t *Tray) render(st app.Status) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuReps == nil {
		return
	}

	systray.SetTitle(title(st))
	t.menuCamera.SetTitle(cameraLabel(st))
	t.menuStart.SetTitle(startLabel(st))
	t.menuReps.SetTitle(repsLabel(st))

	if st.CameraOn {
		t.menuStart.Enable()
		t.menuReset.Enable()
	} else {
		t.menuStart.Disable()
		t.menuReset.Disable()
	}

	for id, item := range t.menuExercises {
		if id == st.Exercise {
			item.Check()
		} else {
			item.Uncheck()
		}
		if st.Active {
			item.Disable()
		} else {
			item.Enable()
		}
	}
}

func (t *Tray) handleCamera() {
	if t.ctrl.Status().CameraOn {
		t.ctrl.StopCamera()
		return
	}
	if err := t.ctrl.StartCamera(); err != nil {
		logrus.WithError(err).Error("error starting camera")
	}
}

func (t *Tray) handleSelect(id exercise.ID) {
	if err := t.ctrl.SelectExercise(id); err != nil {
		logrus.WithError(err).WithField("exercise", id).Warn("error selecting exercise")
	}
}

func (t *Tray) handleStart() {
	if t.ctrl.Status().Active {
		if _, err := t.ctrl.StopExercise(); err != nil {
			logrus.WithError(err).Warn("error stopping exercise")
		}
		return
	}
	if err := t.ctrl.StartExercise(); err != nil {
		logrus.WithError(err).Warn("error starting exercise")
	}
}

func (t *Tray) handleReset() {
	if err := t.ctrl.ResetToInitialPosition(); err != nil {
		logrus.WithError(err).Warn("error resetting exercise")
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

func title(st app.Status) string {
	if !st.CameraOn {
		return "RepCounter"
	}
	if st.TargetReached {
		return fmt.Sprintf("%s %d/%d ✓", st.Exercise, st.Reps, st.TargetReps)
	}
	return fmt.Sprintf("%s %d/%d %s", st.Exercise, st.Reps, st.TargetReps, st.Label)
}

func cameraLabel(st app.Status) string {
	if st.CameraOn {
		return "● Camera On"
	}
	return "○ Camera Off"
}

func startLabel(st app.Status) string {
	if st.Active {
		return "Stop Exercise"
	}
	return "Start Exercise"
}

func repsLabel(st app.Status) string {
	if st.SessionID == "" {
		return "Reps: none"
	}
	return fmt.Sprintf("Reps: %d of %d", st.Reps, st.TargetReps)
}
