package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/session"
)

// Session pagination and validation limits.
const (
	MaxTitleLength   = 100
	DefaultListLimit = 100
	MaxListLimit     = 1000
	MaxListOffset    = 100000
)

// Sessions is the session history surface the handler needs.
type Sessions interface {
	Create(ctx context.Context, title string) (session.Session, error)
	Get(ctx context.Context, id uuid.UUID) (session.Session, error)
	List(ctx context.Context, limit, offset int) ([]session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exchanges(ctx context.Context, sessionID uuid.UUID) ([]session.Exchange, error)
}

// SessionHandler handles session history endpoints.
type SessionHandler struct {
	store  Sessions
	logger log.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(store Sessions, logger log.Logger) *SessionHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &SessionHandler{store: store, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions", h.list)
	mux.HandleFunc("POST /api/sessions", h.create)
	mux.HandleFunc("GET /api/sessions/{id}", h.get)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.delete)
}

// list returns sessions with pagination.
// Query parameters:
//   - limit: maximum sessions to return (default 100, max 1000)
//   - offset: sessions to skip (default 0)
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", DefaultListLimit, 1, MaxListLimit)
	offset := parseIntParam(r, "offset", 0, 0, MaxListOffset)

	sessions, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("listing sessions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "session_error", "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"total":    len(sessions),
		"limit":    limit,
		"offset":   offset,
	})
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	Title string `json:"title"`
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if len(req.Title) > MaxTitleLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "title too long (max 100 characters)")
		return
	}

	sess, err := h.store.Create(r.Context(), req.Title)
	if err != nil {
		h.logger.Error("creating session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "session_error", "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

// SessionDetail is a session together with its exchanges.
type SessionDetail struct {
	session.Session

	Exchanges []session.Exchange `json:"exchanges"`
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	sess, err := h.store.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	if err != nil {
		h.logger.Error("getting session failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "session_error", "failed to get session")
		return
	}

	exchanges, err := h.store.Exchanges(r.Context(), id)
	if err != nil {
		h.logger.Error("listing exchanges failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "session_error", "failed to list exchanges")
		return
	}
	if exchanges == nil {
		exchanges = []session.Exchange{}
	}

	writeJSON(w, http.StatusOK, SessionDetail{Session: sess, Exchanges: exchanges})
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	if err != nil {
		h.logger.Error("deleting session failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "session_error", "failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path value, writing a 400 on failure.
func (h *SessionHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "session id is not a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// parseIntParam parses an integer query parameter with bounds checking.
func parseIntParam(r *http.Request, name string, defaultVal, min, max int) int {
	str := r.URL.Query().Get(name)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
