package export

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alleghenyre/propsearch/internal/httputil"
	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Request selects what to export: explicit parcel IDs, or every result of
// a search filter.
type Request struct {
	Format string           `json:"format"`
	ParIDs []string         `json:"parids"`
	Filter *property.Filter `json:"filter"`
}

type Handler struct {
	store property.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewHandler(store property.Store, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log.With(zap.String("store", store.Name())), now: time.Now}
}

// Export handles POST /export and streams the rendered file.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var f property.Filter
	switch {
	case len(req.ParIDs) > 0:
		f = property.Filter{ParcelIDs: req.ParIDs}
	case req.Filter != nil:
		f = *req.Filter
	default:
		httputil.WriteError(w, http.StatusBadRequest, ErrNothingToExport.Error())
		return
	}
	if err := f.Validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid filter: "+err.Error())
		return
	}

	props, err := h.store.Search(r.Context(), f)
	if err != nil {
		h.log.Error("Export search failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to load properties for export")
		return
	}

	now := h.now()
	var buf bytes.Buffer
	err = Write(&buf, format, props, now)
	if errors.Is(err, ErrNothingToExport) {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error("Export render failed", zap.String("format", string(format)), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	h.log.Info("Report exported", zap.String("format", string(format)), zap.Int("properties", len(props)))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName(now)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// Register adds POST /export to a store's router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/export", h.Export)
}
