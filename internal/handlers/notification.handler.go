package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/customer-ledger/internal/notify"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
)

type NotificationService interface {
	Get(ctx context.Context, userID, id string) (*notify.Draft, error)
	Edit(ctx context.Context, userID, id string, edit notify.DraftEdit) (*notify.Draft, error)
	Confirm(ctx context.Context, userID, id string) (notify.Outcome, error)
	Cancel(ctx context.Context, userID, id string) (notify.Outcome, error)
}

type NotificationHandler struct {
	svc NotificationService
}

func RegisterNotificationRoutes(e *router.Group, h *NotificationHandler) {
	e.GET("/notifications/{id}", RequireUser(h.GetNotification))
	e.PATCH("/notifications/{id}", RequireUser(h.EditNotification))
	e.POST("/notifications/{id}/confirm", RequireUser(h.ConfirmNotification))
	e.POST("/notifications/{id}/cancel", RequireUser(h.CancelNotification))
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type editNotificationRequest struct {
	Phone   *string `json:"phone"   validate:"omitempty,max=32"`
	Message *string `json:"message" validate:"omitempty,max=1000"`
}

func (h *NotificationHandler) GetNotification(ctx *xhttp.RequestCtx) {
	d, err := h.svc.Get(ctx, userID(ctx), pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, d)
}

func (h *NotificationHandler) EditNotification(ctx *xhttp.RequestCtx) {
	var req editNotificationRequest
	if !readJSON(ctx, &req) {
		return
	}
	d, err := h.svc.Edit(ctx, userID(ctx), pathParam(ctx, "id"), notify.DraftEdit{Phone: req.Phone, Message: req.Message})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, d)
}

func (h *NotificationHandler) ConfirmNotification(ctx *xhttp.RequestCtx) {
	o, err := h.svc.Confirm(ctx, userID(ctx), pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, o)
}

func (h *NotificationHandler) CancelNotification(ctx *xhttp.RequestCtx) {
	o, err := h.svc.Cancel(ctx, userID(ctx), pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, o)
}
