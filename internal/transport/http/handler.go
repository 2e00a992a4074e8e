package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"webfingerd/internal/platform/middleware"
	"webfingerd/internal/resolve"
	"webfingerd/internal/resource"
	"webfingerd/internal/tenant/registry"
	"webfingerd/internal/webfinger"
)

// Handler is the thin HTTP layer over the resolution engine. It owns status
// code mapping and serialization; all resolution semantics live below it.
type Handler struct {
	registry *registry.Registry
	engine   *resolve.Engine
	logger   *slog.Logger
}

func NewHandler(reg *registry.Registry, engine *resolve.Engine, logger *slog.Logger) *Handler {
	return &Handler{registry: reg, engine: engine, logger: logger}
}

// HandleWebFinger serves GET /.well-known/webfinger per RFC 7033: a required
// resource parameter and zero or more rel parameters filtering the links.
func (h *Handler) HandleWebFinger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Discovery endpoints are queried cross-origin by design.
	w.Header().Set("Access-Control-Allow-Origin", "*")

	raw := r.URL.Query().Get("resource")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "resource parameter is required")
		return
	}
	rels := r.URL.Query()["rel"]

	id, err := resource.Parse(raw)
	if err != nil {
		h.logger.DebugContext(ctx, "rejected resource",
			"resource", raw,
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		writeError(w, http.StatusBadRequest, "resource is not a supported identifier")
		return
	}

	snapshot := h.registry.Snapshot()
	res, err := h.engine.Resolve(snapshot, id, rels)
	if err != nil {
		h.writeResolveError(w, r, raw, err)
		return
	}

	doc := webfinger.Render(res)
	w.Header().Set("Content-Type", webfinger.ContentType)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		h.logger.ErrorContext(ctx, "failed to write discovery document",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
	}
}

func (h *Handler) writeResolveError(w http.ResponseWriter, r *http.Request, raw string, err error) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	switch {
	case errors.Is(err, resolve.ErrUnknownDomain), errors.Is(err, resolve.ErrUnknownUser):
		h.logger.DebugContext(ctx, "resource not found",
			"resource", raw,
			"error", err,
			"request_id", requestID,
		)
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, resolve.ErrUnresolvedAlias):
		// Configuration defect that escaped load-time validation; the
		// engine already logged the offending alias.
		writeError(w, http.StatusInternalServerError, "configuration error")
	default:
		h.logger.ErrorContext(ctx, "resolution failed",
			"resource", raw,
			"error", err,
			"request_id", requestID,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
