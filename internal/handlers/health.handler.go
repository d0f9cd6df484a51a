package handlers

import (
	"context"

	"github.com/fasthttp/router"
	gateway "github.com/nimasrn/customer-ledger/internal/gateways"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
)

type HealthService interface {
	Check(ctx context.Context) (map[string]string, error)
}

type SMSStats interface {
	Stats() gateway.ProviderStats
}

type HealthHandler struct {
	healthService HealthService
	sms           SMSStats
}

func RegisterHealthRoutes(e *router.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(healthService HealthService, sms SMSStats) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		sms:           sms,
	}
}

type healthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]string      `json:"checks"`
	SMS    *gateway.ProviderStats `json:"sms,omitempty"`
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	checks, err := h.healthService.Check(ctx)
	resp := healthResponse{Status: "ok", Checks: checks}
	if h.sms != nil {
		stats := h.sms.Stats()
		resp.SMS = &stats
	}
	if err != nil {
		resp.Status = "degraded"
		writeJSON(ctx, xhttp.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}
