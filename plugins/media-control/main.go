// Command media-control is a gesture hook that drives media playback and
// volume. Build it next to its plugin.json:
//
//	go build -o ~/.mudra/plugins/media-control/media-control ./plugins/media-control
//
// It uses AppleScript on macOS and playerctl/amixer elsewhere.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/mudra/internal/plugin"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type command []string

// actions maps action names to the command run on each platform.
var actions = map[string]map[string]command{
	"volume-up": {
		"darwin": {"osascript", "-e", `set volume output volume ((output volume of (get volume settings)) + 10)`},
		"linux":  {"amixer", "-q", "set", "Master", "10%+"},
	},
	"volume-down": {
		"darwin": {"osascript", "-e", `set volume output volume ((output volume of (get volume settings)) - 10)`},
		"linux":  {"amixer", "-q", "set", "Master", "10%-"},
	},
	"volume-mute": {
		"darwin": {"osascript", "-e", `set volume output muted (not (output muted of (get volume settings)))`},
		"linux":  {"amixer", "-q", "set", "Master", "toggle"},
	},
	"media-play-pause": {
		"darwin": {"osascript", "-e", "tell application \"System Events\"\n\tkey code 100\nend tell"},
		"linux":  {"playerctl", "play-pause"},
	},
	"media-next": {
		"darwin": {"osascript", "-e", "tell application \"System Events\"\n\tkey code 101\nend tell"},
		"linux":  {"playerctl", "next"},
	},
	"media-prev": {
		"darwin": {"osascript", "-e", "tell application \"System Events\"\n\tkey code 98\nend tell"},
		"linux":  {"playerctl", "previous"},
	},
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fmt.Errorf("failed to decode request: %w", err))
		return
	}
	respond(run(req.Action))
}

func run(action string) error {
	byOS, ok := actions[action]
	if !ok {
		return fmt.Errorf("unknown action: %q", action)
	}
	cmd, ok := byOS[runtime.GOOS]
	if !ok {
		return fmt.Errorf("action %s not supported on %s", action, runtime.GOOS)
	}
	out, err := exec.Command(cmd[0], cmd[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("action %s failed: %w: %s", action, err, out)
	}
	return nil
}

func respond(err error) {
	resp := plugin.Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	_ = json.NewEncoder(os.Stdout).Encode(resp)
}
