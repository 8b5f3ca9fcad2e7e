package importer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alleghenyre/propsearch/internal/httputil"
	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	runner       *Runner
	defaultStore string
	log          *zap.Logger
}

func NewHandler(runner *Runner, defaultStore string, log *zap.Logger) *Handler {
	return &Handler{runner: runner, defaultStore: defaultStore, log: log}
}

type batchRequest struct {
	Offset int    `json:"offset"`
	Store  string `json:"store"`
}

// ImportBatch handles POST /import: one batch, synchronously. It answers 409
// while a background run holds the store.
func (h *Handler) ImportBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, Result{Error: "Invalid request body"})
		return
	}
	store := h.store(req.Store)
	res, err := h.runner.RunBatch(r.Context(), store, req.Offset)
	switch {
	case errors.Is(err, ErrUnknownStore):
		httputil.WriteJSON(w, http.StatusBadRequest, Result{Error: "Unknown store: " + store})
		return
	case errors.Is(err, ErrRunInProgress):
		httputil.WriteJSON(w, http.StatusConflict, Result{Error: err.Error()})
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	httputil.WriteJSON(w, status, res)
}

type populateRequest struct {
	StartOptions
	Store string `json:"store"`
}

// Populate handles POST /import/populate.
func (h *Handler) Populate(w http.ResponseWriter, r *http.Request) {
	var req populateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.start(w, r, h.store(req.Store), req.StartOptions)
}

// PopulateStore returns a handler that always populates the named store.
func (h *Handler) PopulateStore(store string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts StartOptions
		if err := httputil.DecodeJSON(r, &opts); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		h.start(w, r, store, opts)
	}
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request, store string, opts StartOptions) {
	if opts.Offset < 0 {
		httputil.WriteError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	run, err := h.runner.Start(r.Context(), store, opts)
	switch {
	case errors.Is(err, ErrUnknownStore):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRunInProgress):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, property.ErrClearUnsupported):
		httputil.WriteError(w, http.StatusBadRequest, "full refresh is only supported in local mode")
	case err != nil:
		h.log.Error("Failed to start import", zap.String("store", store), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to start import")
	default:
		httputil.WriteJSON(w, http.StatusAccepted, run)
	}
}

// ListRuns handles GET /import/runs?limit=N.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.runner.List(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list import runs", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to list import runs")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, runs)
}

// GetRun handles GET /import/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}
	run, err := h.runner.Get(r.Context(), id)
	if errors.Is(err, ErrRunNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "Import run not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to load import run", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to load import run")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, run)
}

func (h *Handler) store(name string) string {
	if name == "" {
		return h.defaultStore
	}
	return name
}
