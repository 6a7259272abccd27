package hook

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrHookNotFound is returned when a requested hook cannot be found.
var ErrHookNotFound = errors.New("hook not found")

// Manager manages hook discovery and access.
type Manager struct {
	hookDir string
	hooks   map[string]*Hook
	mu      sync.RWMutex
}

// NewManager creates a new hook Manager for the given directory.
func NewManager(hookDir string) *Manager {
	return &Manager{
		hookDir: hookDir,
		hooks:   make(map[string]*Hook),
	}
}

// Discover scans the hook directory. Each subdirectory holding a hook.json
// manifest is a hook. Unreadable or malformed manifests are skipped.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks = make(map[string]*Hook)

	info, err := os.Stat(m.hookDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.hookDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		hookPath := filepath.Join(m.hookDir, entry.Name())
		manifestData, err := os.ReadFile(filepath.Join(hookPath, ManifestFile))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(manifestData, &manifest); err != nil {
			logrus.WithError(err).WithField("dir", hookPath).Warn("skipping hook with invalid manifest")
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			logrus.WithField("dir", hookPath).Warn("skipping hook without name or executable")
			continue
		}

		m.hooks[manifest.Name] = &Hook{
			Manifest:   manifest,
			Path:       hookPath,
			Executable: filepath.Join(hookPath, manifest.Executable),
		}
	}

	logrus.WithFields(logrus.Fields{
		"dir":   m.hookDir,
		"hooks": len(m.hooks),
	}).Info("hooks discovered")
	return nil
}

// Get returns a hook by name.
// Returns ErrHookNotFound if the hook does not exist.
func (m *Manager) Get(name string) (*Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hooks[name]
	if !ok {
		return nil, ErrHookNotFound
	}
	return h, nil
}

// List returns all discovered hooks sorted by name.
func (m *Manager) List() []*Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hooks := make([]*Hook, 0, len(m.hooks))
	for _, h := range m.hooks {
		hooks = append(hooks, h)
	}
	sort.Slice(hooks, func(i, j int) bool { return hooks[i].Manifest.Name < hooks[j].Manifest.Name })
	return hooks
}

// For returns the hooks subscribed to event, sorted by name.
func (m *Manager) For(event Event) []*Hook {
	var out []*Hook
	for _, h := range m.List() {
		if h.Handles(event) {
			out = append(out, h)
		}
	}
	return out
}

// HookDir returns the hook directory path.
func (m *Manager) HookDir() string {
	return m.hookDir
}
