package handler

import (
	"net/http"

	"hallpass/internal/dashboard/service"
	httputil "hallpass/pkg/http"
	"hallpass/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *logger.Logger
}

func NewDashboardHandler(service service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log,
	}
}

func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetStats", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "GetStats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/dashboard/stats", h.GetStats)
}
