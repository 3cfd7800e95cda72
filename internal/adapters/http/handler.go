package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/contracts"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/ports"
)

type Handler struct {
	service  *application.Service
	registry ports.Registry
}

func NewHandler(service *application.Service, registry ports.Registry) *Handler {
	return &Handler{service: service, registry: registry}
}

func (h *Handler) checkOne(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	name := chi.URLParam(r, "name")
	result, err := h.service.CheckIntegration(r.Context(), actor, name)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", result)
}

func (h *Handler) checkMany(w http.ResponseWriter, r *http.Request) {
	var req contracts.CheckManyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
			return
		}
	}
	results, err := h.service.CheckMany(r.Context(), actorFromContext(r.Context()), req.Integrations)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", results)
}

func (h *Handler) listIntegrations(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "", h.registry.List())
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	h.dashboardView(w, r, h.service.Overview)
}

func (h *Handler) realTime(w http.ResponseWriter, r *http.Request) {
	h.dashboardView(w, r, h.service.RealTime)
}

func (h *Handler) performance(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	h.dashboardView(w, r, func(ctx context.Context) (any, error) {
		return h.service.Performance(ctx, period)
	})
}

func (h *Handler) costs(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	h.dashboardView(w, r, func(ctx context.Context) (any, error) {
		return h.service.Costs(ctx, period)
	})
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	h.dashboardView(w, r, h.service.Alerts)
}

func (h *Handler) dashboardView(w http.ResponseWriter, r *http.Request, view func(ctx context.Context) (any, error)) {
	data, err := view(r.Context())
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", data)
}

func (h *Handler) integrationDetails(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := h.service.IntegrationDetails(r.Context(), name)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", data)
}

func (h *Handler) startMonitor(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	name := chi.URLParam(r, "name")
	var req contracts.StartMonitorRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
			return
		}
	}
	status, err := h.service.StartContinuous(r.Context(), actor, name, time.Duration(req.IntervalSeconds)*time.Second)
	if err != nil {
		code, label := mapDomainError(err)
		writeError(w, code, label, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "monitoring started", status)
}

func (h *Handler) stopMonitor(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	name := chi.URLParam(r, "name")
	if err := h.service.StopContinuous(r.Context(), actor, name); err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "monitoring stopped", nil)
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if err := h.service.ClearDashboardCache(r.Context(), actor); err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "dashboard cache cleared", nil)
}

func (h *Handler) auditTrail(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	rows, err := h.service.AuditTrail(r.Context(), limit)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", rows)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "", map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"status":          "ok",
		"active_monitors": len(h.service.ActiveMonitors()),
	})
}
