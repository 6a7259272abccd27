package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcounter/internal/app"
	"github.com/ayusman/repcounter/internal/capture"
	"github.com/ayusman/repcounter/internal/config"
	"github.com/ayusman/repcounter/internal/detector"
	"github.com/ayusman/repcounter/internal/exercise"
	"github.com/ayusman/repcounter/internal/hook"
	"github.com/ayusman/repcounter/internal/logging"
	"github.com/ayusman/repcounter/internal/server"
	"github.com/ayusman/repcounter/internal/store"
	"github.com/ayusman/repcounter/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	headless := flag.Bool("headless", false, "run without the system tray")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.SetupParams{
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})

	if err := run(cfg, *headless); err != nil {
		logrus.Fatal(err)
	}
}

func run(cfg *config.Config, headless bool) error {
	logrus.Info("RepCounter - camera rep counting")

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	catalog, err := buildCatalog(cfg, st)
	if err != nil {
		return err
	}

	hooks := hook.NewManager(cfg.Hooks.Dir)
	if err := hooks.Discover(); err != nil {
		logrus.WithError(err).Warn("error discovering hooks")
	}
	logrus.WithField("count", len(hooks.List())).Info("hooks loaded")
	dispatcher := hook.NewDispatcher(hooks, hook.NewExecutor(cfg.Hooks.TimeoutMs))
	defer dispatcher.Close()

	detectorConfig := detector.DefaultConfig()
	detectorConfig.MinVisibility = cfg.Detector.MinVisibility

	cameraConfig := capture.DefaultCameraConfig()
	cameraConfig.DeviceID = cfg.Camera.DeviceID

	application, err := app.New(app.Config{
		Catalog:         catalog,
		Store:           st,
		Camera:          capture.NewCamera(cameraConfig),
		DetectorConfig:  detectorConfig,
		Hooks:           dispatcher,
		MotionThreshold: cfg.Camera.MotionThreshold,
		Exercise:        cfg.SelectedExercise(),
		TargetReps:      cfg.Session.TargetReps,
		AutoStop:        cfg.Session.AutoStop,
	})
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Close()

	webDir := findWebDir()
	if webDir != "" {
		logrus.WithField("dir", webDir).Info("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		App:       application,
		Store:     st,
	}).Handler(cfg.Server.Addr)

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.Server.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if headless {
		select {
		case <-ctx.Done():
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
		}
	} else {
		t := tray.New(application)
		t.OnSettings(func() {
			openBrowser(settingsURL(cfg.Server.Addr))
		})
		go func() {
			select {
			case <-ctx.Done():
			case <-serverErr:
			}
			t.Quit()
		}()
		t.Run()
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("error shutting down server")
	}
	return nil
}

// buildCatalog combines the built-in exercises and the custom exercises saved in
// the store, then applies the configured thresholds.
func buildCatalog(cfg *config.Config, st *store.Store) (*exercise.Catalog, error) {
	custom, err := st.Exercises().Definitions()
	if err != nil {
		return nil, fmt.Errorf("load custom exercises: %w", err)
	}

	defs, err := exercise.WithThresholds(append(exercise.Builtin(), custom...), cfg.ThresholdOverrides())
	if err != nil {
		return nil, fmt.Errorf("apply thresholds: %w", err)
	}

	catalog, err := exercise.NewCatalog(defs...)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	logrus.WithField("exercises", catalog.Len()).Info("exercise catalog ready")
	return catalog, nil
}

// settingsURL turns a listen address like ":8080" into a browsable URL.
func settingsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logrus.WithError(err).Warn("error opening browser")
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.repcounter/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, config.DataDirName, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
