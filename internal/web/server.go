// Package web serves the browser UI: a single page that streams pipeline
// progress over Server-Sent Events while a question is answered.
package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/samarthdata/samarth/internal/catalog"
	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/qa"
	"github.com/samarthdata/samarth/internal/web/sse"
)

// Engine is the pipeline surface the UI needs.
type Engine interface {
	Answer(ctx context.Context, req qa.Request) (qa.Result, error)
	CatalogStats(ctx context.Context) (catalog.Stats, error)
}

// Server renders the UI and streams answers.
type Server struct {
	engine Engine
	logger log.Logger
}

// NewServer creates the web UI server.
func NewServer(engine Engine, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Server{engine: engine, logger: logger}
}

// RegisterRoutes registers UI routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /events/ask", s.askStream)
}

// index renders the page with current catalog stats.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.CatalogStats(r.Context())
	if err != nil {
		// The page still renders; stats just show zeros.
		s.logger.Warn("catalog stats unavailable", "error", err)
		stats = catalog.Stats{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage(stats).Render(w); err != nil {
		s.logger.Error("rendering page failed", "error", err)
	}
}

// askStream answers a question while streaming stage events.
// EventSource only issues GETs, so the question rides in query parameters.
func (s *Server) askStream(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("question")
	if question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	req := qa.Request{
		Question:     question,
		AutoDiscover: r.URL.Query().Get("auto_discover") == "true",
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("max_datasets")); err == nil && n > 0 {
		req.MaxDatasets = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("max_rows")); err == nil && n > 0 {
		req.MaxRows = n
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	if req.AutoDiscover {
		_ = writer.WriteStage(ctx, sse.StageDiscovering, "Searching data.gov.in for relevant datasets...")
	}
	_ = writer.WriteStage(ctx, sse.StageFetching, "Fetching dataset records...")
	_ = writer.WriteStage(ctx, sse.StageInterpreting, "Generating answer...")

	result, err := s.engine.Answer(ctx, req)
	if err != nil {
		s.logger.Error("answering question failed", "error", err)
		_ = writer.WriteError("pipeline_error", "Failed to answer the question. Please try again.")
		return
	}

	if err := writer.WriteEvent(ctx, sse.EventAnswer, result); err != nil {
		s.logger.Warn("writing answer event failed", "error", err)
	}
}
