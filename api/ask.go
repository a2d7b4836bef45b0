package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/qa"
	"github.com/samarthdata/samarth/internal/session"
)

// MaxQuestionLength bounds question bodies.
const MaxQuestionLength = 2000

// Answerer runs the question pipeline.
type Answerer interface {
	Answer(ctx context.Context, req qa.Request) (qa.Result, error)
}

// ExchangeRecorder persists question/answer pairs into sessions.
type ExchangeRecorder interface {
	AddExchange(ctx context.Context, sessionID uuid.UUID, question, answer string, sources []string) (session.Exchange, error)
}

// AskHandler handles the question endpoint.
type AskHandler struct {
	engine   Answerer
	recorder ExchangeRecorder // may be nil
	logger   log.Logger
}

// NewAskHandler creates an ask handler. recorder may be nil to skip history.
func NewAskHandler(engine Answerer, recorder ExchangeRecorder, logger log.Logger) *AskHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &AskHandler{engine: engine, recorder: recorder, logger: logger}
}

// RegisterRoutes registers the ask route on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.ask)
}

// AskRequest is the request body for /api/ask.
type AskRequest struct {
	qa.Request

	// SessionID records the exchange into an existing session when set.
	SessionID string `json:"session_id,omitempty"`
}

// AskResponse is the response body for /api/ask.
type AskResponse struct {
	qa.Result

	SessionID string `json:"session_id,omitempty"`
}

func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}
	if len(req.Question) > MaxQuestionLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "question too long (max 2000 characters)")
		return
	}

	var sessionID uuid.UUID
	if req.SessionID != "" {
		var err error
		sessionID, err = uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "session_id is not a valid UUID")
			return
		}
	}

	result, err := h.engine.Answer(r.Context(), req.Request)
	if errors.Is(err, qa.ErrEmptyQuestion) {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}
	if err != nil {
		h.logger.Error("answering question failed", "error", err)
		writeError(w, http.StatusInternalServerError, "pipeline_error", "failed to answer question")
		return
	}

	resp := AskResponse{Result: result, SessionID: req.SessionID}
	if h.recorder != nil && sessionID != uuid.Nil {
		if _, err := h.recorder.AddExchange(r.Context(), sessionID, result.Question, result.Answer, result.Sources); err != nil {
			// The answer still goes out; history is best effort.
			h.logger.Warn("recording exchange failed", "session_id", sessionID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
