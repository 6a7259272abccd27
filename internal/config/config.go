// Package config loads the repcounter configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/repcounter/internal/exercise"
)

// DataDirName is the directory under the user's home holding the database and hooks.
const DataDirName = ".repcounter"

type Config struct {
	Server    ServerConfig                  `yaml:"server"`
	Camera    CameraConfig                  `yaml:"camera"`
	Detector  DetectorConfig                `yaml:"detector"`
	Store     StoreConfig                   `yaml:"store"`
	Log       LogConfig                     `yaml:"log"`
	Session   SessionConfig                 `yaml:"session"`
	Hooks     HooksConfig                   `yaml:"hooks"`
	Exercises map[string]ThresholdOverrides `yaml:"exercises"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type CameraConfig struct {
	DeviceID        int     `yaml:"device_id"`
	MotionThreshold float64 `yaml:"motion_threshold"`
}

type DetectorConfig struct {
	MinVisibility float64 `yaml:"min_visibility"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type SessionConfig struct {
	Exercise   string `yaml:"exercise"`
	TargetReps int    `yaml:"target_reps"`
	AutoStop   bool   `yaml:"auto_stop"`
}

type HooksConfig struct {
	Dir       string `yaml:"dir"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ThresholdOverrides replaces the band edges of one exercise.
type ThresholdOverrides struct {
	Contracted float64 `yaml:"contracted_threshold"`
	Extended   float64 `yaml:"extended_threshold"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	dataDir := DataDirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, DataDirName)
	}

	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Camera:   CameraConfig{DeviceID: 0, MotionThreshold: 1.0},
		Detector: DetectorConfig{MinVisibility: 0.5},
		Store:    StoreConfig{Path: filepath.Join(dataDir, "repcounter.db")},
		Log:      LogConfig{Level: "info"},
		Session: SessionConfig{
			Exercise:   string(exercise.Curl),
			TargetReps: 10,
			AutoStop:   true,
		},
		Hooks: HooksConfig{
			Dir:       filepath.Join(dataDir, "hooks"),
			TimeoutMs: 5000,
		},
	}
}

// Load reads config from a YAML file on top of Default, then applies environment
// variable overrides. An empty path skips the file. Env vars use the prefix
// REPCOUNTER_ and underscore-separated paths:
//
//	REPCOUNTER_SERVER_ADDR, REPCOUNTER_CAMERA_DEVICE_ID,
//	REPCOUNTER_STORE_PATH, REPCOUNTER_LOG_LEVEL, REPCOUNTER_LOG_JSON,
//	REPCOUNTER_SESSION_EXERCISE, REPCOUNTER_SESSION_TARGET_REPS,
//	REPCOUNTER_SESSION_AUTO_STOP, REPCOUNTER_HOOKS_DIR
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPCOUNTER_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REPCOUNTER_CAMERA_DEVICE_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Camera.DeviceID = id
		}
	}
	if v := os.Getenv("REPCOUNTER_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("REPCOUNTER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("REPCOUNTER_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.JSON = b
		}
	}
	if v := os.Getenv("REPCOUNTER_SESSION_EXERCISE"); v != "" {
		cfg.Session.Exercise = v
	}
	if v := os.Getenv("REPCOUNTER_SESSION_TARGET_REPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.TargetReps = n
		}
	}
	if v := os.Getenv("REPCOUNTER_SESSION_AUTO_STOP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Session.AutoStop = b
		}
	}
	if v := os.Getenv("REPCOUNTER_HOOKS_DIR"); v != "" {
		cfg.Hooks.Dir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Camera.DeviceID < 0 {
		return fmt.Errorf("camera.device_id must not be negative")
	}
	if c.Camera.MotionThreshold < 0 || c.Camera.MotionThreshold > 100 {
		return fmt.Errorf("camera.motion_threshold must be a percentage, got %v", c.Camera.MotionThreshold)
	}
	if c.Detector.MinVisibility < 0 || c.Detector.MinVisibility > 1 {
		return fmt.Errorf("detector.min_visibility must be in [0, 1], got %v", c.Detector.MinVisibility)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("log.level %q is not a known level", c.Log.Level)
	}
	if c.Session.Exercise == "" {
		return fmt.Errorf("session.exercise is required")
	}
	if c.Session.TargetReps < 0 {
		return fmt.Errorf("session.target_reps must not be negative")
	}
	if c.Hooks.TimeoutMs <= 0 {
		return fmt.Errorf("hooks.timeout_ms must be positive")
	}
	return nil
}

// ThresholdOverrides returns the exercises section keyed by exercise id.
// Ids are upper-cased so the file may use either case.
func (c *Config) ThresholdOverrides() map[exercise.ID]exercise.Thresholds {
	if len(c.Exercises) == 0 {
		return nil
	}
	out := make(map[exercise.ID]exercise.Thresholds, len(c.Exercises))
	for id, o := range c.Exercises {
		out[exercise.ID(strings.ToUpper(id))] = exercise.Thresholds{
			Contracted: o.Contracted,
			Extended:   o.Extended,
		}
	}
	return out
}

// SelectedExercise returns the configured exercise id.
func (c *Config) SelectedExercise() exercise.ID {
	return exercise.ID(strings.ToUpper(c.Session.Exercise))
}
