package overlay

import (
	"sync"

	"gocv.io/x/gocv"
)

// Display shows annotated frames and reports key presses.
type Display interface {
	Show(frame *gocv.Mat) error
	// PollKey waits briefly for a key and returns its code, or NoKey.
	PollKey() int
	Close() error
}

// Window is a Display backed by an OpenCV HighGUI window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	if title == "" {
		title = DefaultWindowTitle
	}
	return &Window{win: gocv.NewWindow(title)}
}

// Show draws frame in the window.
func (w *Window) Show(frame *gocv.Mat) error {
	w.win.IMShow(*frame)
	return nil
}

// PollKey waits one millisecond for a key press.
func (w *Window) PollKey() int {
	return w.win.WaitKey(1)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// Headless is a Display that shows nothing. Keys can be injected with Press.
type Headless struct {
	mu    sync.Mutex
	keys  []int
	shown int
}

// Show counts the frame.
func (h *Headless) Show(*gocv.Mat) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown++
	return nil
}

// Press queues key codes returned by subsequent PollKey calls.
func (h *Headless) Press(keys ...int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = append(h.keys, keys...)
}

// PollKey returns the next queued key or NoKey.
func (h *Headless) PollKey() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.keys) == 0 {
		return NoKey
	}
	k := h.keys[0]
	h.keys = h.keys[1:]
	return k
}

// Shown returns how many frames were shown.
func (h *Headless) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Close implements Display.
func (h *Headless) Close() error { return nil }
