package property

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alleghenyre/propsearch/internal/httputil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves search endpoints for one store.
type Handler struct {
	store Store
	log   *zap.Logger
}

func NewHandler(store Store, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log.With(zap.String("store", store.Name()))}
}

// SearchResponse is the result list plus its summary.
type SearchResponse struct {
	Properties []Property `json:"properties"`
	Summary    Summary    `json:"summary"`
}

// Search handles POST /search. An empty body searches with the default filter.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	f := DefaultFilter()
	if err := httputil.DecodeJSON(r, &f); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := f.Validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid filter: "+err.Error())
		return
	}

	start := time.Now()
	props, err := h.store.Search(r.Context(), f)
	if err != nil {
		h.log.Error("Search failed", zap.Any("filter", f), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to load properties. Please try again.")
		return
	}
	searched := time.Since(start)

	start = time.Now()
	summary := Summarize(props)
	httputil.AddServerTiming(w,
		httputil.Timing{Name: "search", Dur: searched},
		httputil.Timing{Name: "summary", Dur: time.Since(start)},
	)

	h.log.Info("Search complete", zap.Int("results", len(props)), zap.Duration("took", searched))
	httputil.WriteJSON(w, http.StatusOK, SearchResponse{Properties: props, Summary: summary})
}

// GetProperty handles GET /{parid}.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	parID := chi.URLParam(r, "parid")
	p, err := h.store.Get(r.Context(), parID)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		h.log.Error("Get failed", zap.String("parid", parID), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to load property")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ListMunicipalities(w http.ResponseWriter, r *http.Request) {
	vals, err := h.store.Municipalities(r.Context())
	if err != nil {
		h.log.Error("Listing municipalities failed", zap.Error(err))
		vals = []string{AllMunicipalities}
	}
	httputil.WriteJSON(w, http.StatusOK, vals)
}

func (h *Handler) ListPropertyTypes(w http.ResponseWriter, r *http.Request) {
	vals, err := h.store.PropertyTypes(r.Context())
	if err != nil {
		h.log.Error("Listing property types failed", zap.Error(err))
		vals = []string{AllPropertyTypes}
	}
	httputil.WriteJSON(w, http.StatusOK, vals)
}

func (h *Handler) CountProperties(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Count(r.Context())
	if err != nil {
		h.log.Error("Count failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to count properties")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// Refresh handles POST /refresh: it rereads the persisted snapshot so data
// written by another process becomes searchable. Only the local store
// supports it.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rl, ok := h.store.(interface{ Reload(context.Context) error })
	if !ok {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "refresh is only supported in local mode")
		return
	}
	if err := rl.Reload(r.Context()); err != nil {
		h.log.Error("Refresh failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to reload local data")
		return
	}
	n, err := h.store.Count(r.Context())
	if err != nil {
		h.log.Error("Count failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to count properties")
		return
	}
	h.log.Info("Local data reloaded", zap.Int64("count", n))
	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// ClearAll handles DELETE /. Only the local store supports it.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	err := h.store.Clear(r.Context())
	if errors.Is(err, ErrClearUnsupported) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, err.Error())
		return
	}
	if err != nil {
		h.log.Error("Clear failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to clear data")
		return
	}
	h.log.Info("All property data cleared")
	w.WriteHeader(http.StatusNoContent)
}
