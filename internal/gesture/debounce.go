package gesture

// Debounce remembers the last emitted label so a gesture is reported
// once per change instead of once per frame. It starts with no label.
// A Debounce belongs to a single run loop and is not safe for concurrent use.
type Debounce struct {
	last Label
	set  bool
}

// Observe records label for the current frame and reports whether it
// differs from the last emitted label. When it does, label becomes the
// last emitted label.
func (d *Debounce) Observe(label Label) bool {
	if d.set && d.last == label {
		return false
	}
	d.last = label
	d.set = true
	return true
}

// Last returns the last emitted label, if any.
func (d *Debounce) Last() (Label, bool) {
	return d.last, d.set
}

// Reset returns to the initial state.
func (d *Debounce) Reset() {
	d.last = ""
	d.set = false
}

// Transitions returns the positions in labels at which a fresh Debounce
// would emit.
func Transitions(labels []Label) []int {
	var d Debounce
	var out []int
	for i, l := range labels {
		if d.Observe(l) {
			out = append(out, i)
		}
	}
	return out
}
