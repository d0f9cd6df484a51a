package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/nimasrn/customer-ledger/internal/ledger"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
)

type StatisticsService interface {
	Statistics(ctx context.Context, userID string, from, to time.Time) (ledger.Summary, error)
}

type StatisticsHandler struct {
	svc StatisticsService
	now func() time.Time
}

func RegisterStatisticsRoutes(e *router.Group, h *StatisticsHandler) {
	e.GET("/statistics", RequireUser(h.GetStatistics))
}

func NewStatisticsHandler(svc StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{svc: svc, now: time.Now}
}

// GetStatistics defaults to today when from or to is omitted.
func (h *StatisticsHandler) GetStatistics(ctx *xhttp.RequestCtx) {
	today := h.now().UTC()
	from, to := today, today

	if v := query(ctx, "from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeJSON(ctx, xhttp.StatusBadRequest, errorResponse{Error: "invalid date, expected YYYY-MM-DD", Field: "from"})
			return
		}
		from = t
	}
	if v := query(ctx, "to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeJSON(ctx, xhttp.StatusBadRequest, errorResponse{Error: "invalid date, expected YYYY-MM-DD", Field: "to"})
			return
		}
		to = t
	}

	s, err := h.svc.Statistics(ctx, userID(ctx), from, to)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, s)
}
