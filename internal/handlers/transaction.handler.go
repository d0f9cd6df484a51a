package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/services"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
	"github.com/shopspring/decimal"
)

type RecordService interface {
	Record(ctx context.Context, req services.RecordRequest) (*services.RecordResult, error)
	CustomerBalance(ctx context.Context, userID, customerID string) (services.Balance, error)
}

type TransactionEditor interface {
	Edit(ctx context.Context, userID, id string, u model.TransactionUpdate) (*model.Transaction, error)
	Delete(ctx context.Context, userID, id string) (*model.Transaction, error)
}

type TransactionHandler struct {
	ledger RecordService
	editor TransactionEditor
}

func RegisterTransactionRoutes(e *router.Group, h *TransactionHandler) {
	e.POST("/transactions", RequireUser(h.RecordTransaction))
	e.PATCH("/transactions/{id}", RequireUser(h.UpdateTransaction))
	e.DELETE("/transactions/{id}", RequireUser(h.DeleteTransaction))
}

func NewTransactionHandler(ledger RecordService, editor TransactionEditor) *TransactionHandler {
	return &TransactionHandler{
		ledger: ledger,
		editor: editor,
	}
}

type recordTransactionRequest struct {
	CustomerID   string          `json:"customer_id"   validate:"required_without=CustomerName"`
	CustomerName string          `json:"customer_name" validate:"max=200"`
	Kind         string          `json:"kind"          validate:"required,oneof=debt payment"`
	Subkind      string          `json:"subkind"       validate:"omitempty,oneof=debt cash"`
	Amount       decimal.Decimal `json:"amount"        validate:"positive_decimal"`
	Description  string          `json:"description"   validate:"max=500"`
}

type updateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
}

type transactionResponse struct {
	Transaction *model.Transaction `json:"transaction"`
	Balance     services.Balance   `json:"balance"`
}

func (h *TransactionHandler) RecordTransaction(ctx *xhttp.RequestCtx) {
	var req recordTransactionRequest
	if !readJSON(ctx, &req) {
		return
	}
	res, err := h.ledger.Record(ctx, services.RecordRequest{
		UserID:       userID(ctx),
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Kind:         model.Kind(req.Kind),
		Subkind:      model.Subkind(req.Subkind),
		Amount:       req.Amount,
		Description:  req.Description,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, res)
}

func (h *TransactionHandler) UpdateTransaction(ctx *xhttp.RequestCtx) {
	var req updateTransactionRequest
	if !readJSON(ctx, &req) {
		return
	}
	uid := userID(ctx)
	txn, err := h.editor.Edit(ctx, uid, pathParam(ctx, "id"), model.TransactionUpdate{Amount: req.Amount, Description: req.Description})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	h.writeWithBalance(ctx, uid, txn)
}

func (h *TransactionHandler) DeleteTransaction(ctx *xhttp.RequestCtx) {
	uid := userID(ctx)
	txn, err := h.editor.Delete(ctx, uid, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	h.writeWithBalance(ctx, uid, txn)
}

func (h *TransactionHandler) writeWithBalance(ctx *xhttp.RequestCtx, uid string, txn *model.Transaction) {
	b, err := h.ledger.CustomerBalance(ctx, uid, txn.CustomerID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, transactionResponse{Transaction: txn, Balance: b})
}
