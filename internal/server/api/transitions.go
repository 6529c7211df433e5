package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// MaxListLimit bounds the limit query parameter.
const MaxListLimit = 1000

// TransitionHandler serves the transition journal.
type TransitionHandler struct {
	store *store.Store
}

// NewTransitionHandler creates a new TransitionHandler with the given store.
func NewTransitionHandler(s *store.Store) *TransitionHandler {
	return &TransitionHandler{store: s}
}

type listTransitionsResponse struct {
	Transitions []*store.Transition `json:"transitions"`
}

// ServeHTTP handles GET /api/transitions and GET /api/transitions/{id}.
func (h *TransitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/transitions"), "/")
	if id != "" {
		h.get(w, id)
		return
	}
	h.list(w, r)
}

func (h *TransitionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transitions, err := h.store.Transitions().List(r.URL.Query().Get("session"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transitions")
		return
	}
	if transitions == nil {
		transitions = []*store.Transition{}
	}

	writeJSON(w, http.StatusOK, listTransitionsResponse{Transitions: transitions})
}

func (h *TransitionHandler) get(w http.ResponseWriter, id string) {
	t, err := h.store.Transitions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get transition")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// SessionHandler serves recognition sessions and their label counts.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

type sessionResponse struct {
	*store.Session
	Transitions int                   `json:"transitions"`
	Counts      map[gesture.Label]int `json:"counts"`
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

// ServeHTTP handles GET /api/sessions, GET /api/sessions/{id} and
// DELETE /api/sessions/{id}.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.list(w)
	case id != "" && r.Method == http.MethodGet:
		h.get(w, id)
	case id != "" && r.Method == http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SessionHandler) list(w http.ResponseWriter) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (h *SessionHandler) get(w http.ResponseWriter, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	counts, err := h.store.Transitions().LabelCounts(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count transitions")
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Transitions: total, Counts: counts})
}

func (h *SessionHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return store.DefaultListLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > MaxListLimit {
		n = MaxListLimit
	}
	return n, nil
}
