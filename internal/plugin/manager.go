package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager manages plugin discovery and access.
type Manager struct {
	pluginDir string
	plugins   map[string]*Plugin
	rules     *gesture.Ruleset
	log       logrus.FieldLogger
	mu        sync.RWMutex
}

// NewManager creates a new plugin Manager with the given plugin directory.
func NewManager(pluginDir string, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
		rules:     gesture.DefaultRuleset,
		log:       log,
	}
}

// SetRuleset sets the ruleset whose labels manifests are checked against.
// A nil ruleset restores the default.
func (m *Manager) SetRuleset(rs *gesture.Ruleset) {
	if rs == nil {
		rs = gesture.DefaultRuleset
	}
	m.mu.Lock()
	m.rules = rs
	m.mu.Unlock()
}

// Discover scans the plugin directory for manifests and loads them.
// Invalid plugins are logged and skipped; a missing directory is not an error.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Plugin)

	info, err := os.Stat(m.pluginDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("plugin path %s is not a directory", m.pluginDir)
	}

	entries, err := os.ReadDir(m.pluginDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(m.pluginDir, entry.Name())
		plugin, err := m.loadPlugin(pluginPath)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			m.log.WithError(err).WithField("path", pluginPath).Warn("skipping plugin")
			continue
		}
		m.plugins[plugin.Manifest.Name] = plugin
	}

	return nil
}

// loadPlugin reads and validates the manifest in dir. Actions keyed by a
// label the ruleset never reports are kept but logged, since they cannot fire.
func (m *Manager) loadPlugin(dir string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if manifest.Name == "" || manifest.Executable == "" {
		return nil, errors.New("manifest needs name and executable")
	}
	for label := range manifest.Actions {
		if !label.Valid() {
			return nil, fmt.Errorf("manifest action for unknown gesture %q", label)
		}
	}
	for label, action := range manifest.Actions {
		if !m.rules.Reports(label) {
			m.log.WithFields(logrus.Fields{
				"plugin":  manifest.Name,
				"gesture": label,
				"action":  action,
			}).Warn("action bound to a gesture that is never reported")
		}
	}

	executable := filepath.Join(dir, manifest.Executable)
	if _, err := os.Stat(executable); err != nil {
		return nil, fmt.Errorf("plugin %s: executable: %v", manifest.Name, err)
	}

	return &Plugin{
		Manifest:   manifest,
		Path:       dir,
		Executable: executable,
	}, nil
}

// Get returns a plugin by name.
// Returns ErrPluginNotFound if the plugin does not exist.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}

	return plugin, nil
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, plugin := range m.plugins {
		plugins = append(plugins, plugin)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})

	return plugins
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}
