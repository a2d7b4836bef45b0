package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/samarthdata/samarth/internal/catalog"
	"github.com/samarthdata/samarth/internal/log"
)

// Catalog is the read surface of the dataset catalog.
type Catalog interface {
	List(ctx context.Context, category string) ([]catalog.Dataset, error)
	Stats(ctx context.Context) (catalog.Stats, error)
}

// DatasetHandler handles catalog endpoints.
type DatasetHandler struct {
	store  Catalog
	logger log.Logger
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(store Catalog, logger log.Logger) *DatasetHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &DatasetHandler{store: store, logger: logger}
}

// RegisterRoutes registers catalog routes on the given mux.
func (h *DatasetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets", h.list)
	mux.HandleFunc("GET /api/stats", h.stats)
}

// list returns catalog datasets, optionally filtered by ?category=.
func (h *DatasetHandler) list(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	datasets, err := h.store.List(r.Context(), category)
	if errors.Is(err, catalog.ErrInvalidCategory) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown category "+strconv.Quote(category))
		return
	}
	if err != nil {
		h.logger.Error("listing datasets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "failed to list datasets")
		return
	}
	if datasets == nil {
		datasets = []catalog.Dataset{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"datasets": datasets,
		"total":    len(datasets),
	})
}

// stats returns per-category dataset counts.
func (h *DatasetHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.Error("catalog stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
