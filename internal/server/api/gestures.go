package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
)

// GestureHandler describes the recognizable vocabulary and how each label
// is reached.
type GestureHandler struct {
	classifier *gesture.Classifier
}

// NewGestureHandler creates a GestureHandler for c.
func NewGestureHandler(c *gesture.Classifier) *GestureHandler {
	return &GestureHandler{classifier: c}
}

type gestureResponse struct {
	Label gesture.Label `json:"label"`
	// Patterns are the finger statuses reported as this label.
	Patterns []string `json:"patterns,omitempty"`
	// AlternateFor are patterns where this label is a non-reported candidate.
	AlternateFor []string `json:"alternate_for,omitempty"`
	Fallback     string   `json:"fallback,omitempty"`
}

type listGesturesResponse struct {
	Gestures    []gestureResponse `json:"gestures"`
	OKThreshold float64           `json:"ok_threshold"`
}

// ServeHTTP handles GET /api/gestures and GET /api/gestures/{label}.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vocab := h.vocabulary()

	path := strings.TrimPrefix(r.URL.Path, "/api/gestures")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		writeJSON(w, http.StatusOK, listGesturesResponse{
			Gestures:    vocab,
			OKThreshold: h.classifier.OKThreshold(),
		})
		return
	}

	name, err := url.PathUnescape(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid label")
		return
	}
	label, err := gesture.ParseLabel(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Gesture not found")
		return
	}
	for _, g := range vocab {
		if g.Label == label {
			writeJSON(w, http.StatusOK, g)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Gesture not found")
}

func (h *GestureHandler) vocabulary() []gestureResponse {
	byLabel := make(map[gesture.Label]*gestureResponse)
	out := make([]gestureResponse, len(gesture.Labels()))
	for i, l := range gesture.Labels() {
		out[i].Label = l
		byLabel[l] = &out[i]
	}

	for _, rule := range h.classifier.Ruleset().Rules() {
		p := rule.Pattern.String()
		byLabel[rule.Label()].Patterns = append(byLabel[rule.Label()].Patterns, p)
		for _, alt := range rule.Alternates() {
			byLabel[alt].AlternateFor = append(byLabel[alt].AlternateFor, p)
		}
	}

	byLabel[gesture.OK].Fallback = fmt.Sprintf("no pattern matched and thumb-index distance < %g", h.classifier.OKThreshold())
	byLabel[gesture.Unknown].Fallback = "no pattern matched and thumb-index distance too large"
	return out
}
