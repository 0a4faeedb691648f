package handler

import (
	"net/http"

	"hallpass/internal/audit/service"
	httputil "hallpass/pkg/http"
	"hallpass/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AuditHandler struct {
	service service.AuditService
	log     *logger.Logger
}

func NewAuditHandler(service service.AuditService, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		log:     log,
	}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	entries, total, err := h.service.List(r.Context(), query.Get("entity_name"), query.Get("entity_id"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, entries, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *AuditHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/audit", h.List)
}
