// Package plugin runs external programs when the recognized gesture
// changes. A plugin is a directory holding a plugin.json manifest and an
// executable that reads one Request as JSON on stdin and writes one
// Response as JSON on stdout.
package plugin

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/mudra/internal/gesture"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ManifestFile is the manifest name looked up in each plugin directory.
const ManifestFile = "plugin.json"

// Manifest describes a plugin's metadata and the gestures it reacts to.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	// Actions maps a gesture label to the action passed in Request.Action.
	// A plugin without actions is called for every gesture.
	Actions map[gesture.Label]string `json:"actions,omitempty"`
	Config  jsoniter.RawMessage       `json:"config,omitempty"`
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action     string              `json:"action,omitempty"`
	Gesture    gesture.Label       `json:"gesture"`
	Status     string              `json:"status"`
	Handedness string              `json:"handedness,omitempty"`
	Frame      int                 `json:"frame"`
	Session    string              `json:"session,omitempty"`
	Time       time.Time           `json:"time"`
	Config     jsoniter.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Data    jsoniter.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin reacts to label and which action it
// should be given.
func (p *Plugin) Handles(label gesture.Label) (string, bool) {
	if len(p.Manifest.Actions) == 0 {
		return "", true
	}
	action, ok := p.Manifest.Actions[label]
	return action, ok
}
