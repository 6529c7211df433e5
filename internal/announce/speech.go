package announce

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ErrSpeechTimeout is returned when an utterance outlives Speaker.Timeout.
var ErrSpeechTimeout = errors.New("speech timed out")

// Speaker reads labels aloud through an external text-to-speech program.
// The text is appended as the last argument. Announce returns only after
// the program exits.
type Speaker struct {
	Command string
	Args    []string
	// Timeout bounds one utterance; zero waits indefinitely.
	Timeout time.Duration
}

// DefaultSpeechCommand returns the platform text-to-speech program.
func DefaultSpeechCommand() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak"
}

// NewSpeaker creates a Speaker for command, or the platform default when
// command is empty. A command line with spaces is split into arguments.
func NewSpeaker(command string, timeout time.Duration) *Speaker {
	if command == "" {
		command = DefaultSpeechCommand()
	}
	fields := strings.Fields(command)
	return &Speaker{
		Command: fields[0],
		Args:    fields[1:],
		Timeout: timeout,
	}
}

// Check verifies the speech program can be found.
func (s *Speaker) Check() error {
	if _, err := exec.LookPath(s.Command); err != nil {
		return fmt.Errorf("speech command %q: %w", s.Command, err)
	}
	return nil
}

// Say speaks text and waits for it to finish.
func (s *Speaker) Say(ctx context.Context, text string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, s.Args...), text)
	cmd := exec.CommandContext(ctx, s.Command, args...)

	cmd.WaitDelay = time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()

	if s.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrSpeechTimeout, s.Timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("speak %q: %w, stderr: %s", text, err, msg)
		}
		return fmt.Errorf("speak %q: %w", text, err)
	}
	return nil
}

// Announce implements Announcer by speaking the label.
func (s *Speaker) Announce(ctx context.Context, ev Event) error {
	return s.Say(ctx, string(ev.Label))
}
