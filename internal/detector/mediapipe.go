package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	poseScriptName = "pose_service.py"
	idleShutdown   = 30 * time.Second
)

// MediaPipeDetector implements Detector using a Python MediaPipe Pose subprocess.
//
// Protocol: each frame is written to stdin as a 4 byte big-endian length followed by
// the JPEG bytes; the service answers with one JSON line per frame.
type MediaPipeDetector struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	idleTimer  *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := findPoseScript()
	if scriptPath == "" {
		return nil, fmt.Errorf("%s not found", poseScriptName)
	}

	return &MediaPipeDetector{
		config:     config,
		scriptPath: scriptPath,
	}, nil
}

// Detect analyzes a frame and returns the detected pose.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (LandmarkSet, error) {
	if frame == nil || frame.Empty() {
		return NotDetected(), nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return NotDetected(), err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return NotDetected(), fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	if _, err := d.stdin.Write(length); err != nil {
		return NotDetected(), fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return NotDetected(), fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		return NotDetected(), fmt.Errorf("read response: %w", err)
	}

	d.resetIdleTimer()

	return parsePoseResponse(line, d.config.MinVisibility)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, d.scriptPath,
		"--min-detection-confidence", fmt.Sprintf("%.2f", d.config.MinConfidence),
		"--min-tracking-confidence", fmt.Sprintf("%.2f", d.config.MinTrackingConf),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	logrus.WithField("script", d.scriptPath).Info("pose service started")
	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	logrus.Info("pose service stopped")
	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.shutdown(); err != nil {
			logrus.WithError(err).Debug("pose service exited")
		}
	})
}

// poseResponse is the JSON line written by the pose service for one frame.
// Landmarks is empty when no person was found.
type poseResponse struct {
	Landmarks []jsonLandmark `json:"landmarks"`
}

type jsonLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// parsePoseResponse converts a service response into a LandmarkSet, dropping
// joints whose visibility is below minVisibility.
func parsePoseResponse(line []byte, minVisibility float64) (LandmarkSet, error) {
	var response poseResponse
	if err := json.Unmarshal(line, &response); err != nil {
		return NotDetected(), fmt.Errorf("parse response: %w", err)
	}

	if len(response.Landmarks) == 0 {
		return NotDetected(), nil
	}

	pose := NewLandmarkSet()
	for i := 0; i < int(NumJoints) && i < len(response.Landmarks); i++ {
		lm := response.Landmarks[i]
		if lm.Visibility < minVisibility {
			continue
		}
		pose.Set(Joint(i), Point2D{X: lm.X, Y: lm.Y})
	}

	return pose, nil
}

func findPoseScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		filepath.Join("scripts", poseScriptName),
		filepath.Join("..", "scripts", poseScriptName),
		filepath.Join(execDir, "scripts", poseScriptName),
		filepath.Join(os.Getenv("HOME"), ".repcounter", "scripts", poseScriptName),
	)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".repcounter/venv/bin/python"),
	)
}

// firstExisting returns the absolute form of the first candidate path that exists.
func firstExisting(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
