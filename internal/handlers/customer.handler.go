package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/customer-ledger/internal/ledger"
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/services"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
)

type CustomerService interface {
	Add(ctx context.Context, userID, name, phone string) (*model.Customer, error)
	Find(ctx context.Context, userID, query string) ([]*model.Customer, error)
	Get(ctx context.Context, userID, id string) (*model.Customer, error)
	Update(ctx context.Context, userID, id string, u model.CustomerUpdate) (*model.Customer, error)
}

type CustomerLedger interface {
	CustomerBalance(ctx context.Context, userID, customerID string) (services.Balance, error)
	DeleteCustomer(ctx context.Context, userID, customerID string) (int64, error)
}

type HistoryService interface {
	History(ctx context.Context, userID, customerID string, dir ledger.Direction) ([]*model.Transaction, error)
}

type CustomerHandler struct {
	customers CustomerService
	ledger    CustomerLedger
	history   HistoryService
}

func RegisterCustomerRoutes(e *router.Group, h *CustomerHandler) {
	e.POST("/customers", RequireUser(h.CreateCustomer))
	e.GET("/customers", RequireUser(h.ListCustomers))
	e.GET("/customers/{id}", RequireUser(h.GetCustomer))
	e.PATCH("/customers/{id}", RequireUser(h.UpdateCustomer))
	e.DELETE("/customers/{id}", RequireUser(h.DeleteCustomer))
	e.GET("/customers/{id}/balance", RequireUser(h.GetBalance))
	e.GET("/customers/{id}/transactions", RequireUser(h.ListTransactions))
}

func NewCustomerHandler(customers CustomerService, ledger CustomerLedger, history HistoryService) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		ledger:    ledger,
		history:   history,
	}
}

type createCustomerRequest struct {
	Name  string `json:"name"  validate:"notblank,max=200"`
	Phone string `json:"phone" validate:"max=32"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name"  validate:"omitempty,notblank,max=200"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

type customerListResponse struct {
	Items []*model.Customer `json:"items"`
	Total int               `json:"total"`
}

type deleteCustomerResponse struct {
	ID                  string `json:"id"`
	DeletedTransactions int64  `json:"deleted_transactions"`
}

type transactionListResponse struct {
	Items   []*model.Transaction `json:"items"`
	Total   int                  `json:"total"`
	Balance services.Balance     `json:"balance"`
}

func (h *CustomerHandler) CreateCustomer(ctx *xhttp.RequestCtx) {
	var req createCustomerRequest
	if !readJSON(ctx, &req) {
		return
	}
	c, err := h.customers.Add(ctx, userID(ctx), req.Name, req.Phone)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, c)
}

func (h *CustomerHandler) ListCustomers(ctx *xhttp.RequestCtx) {
	items, err := h.customers.Find(ctx, userID(ctx), query(ctx, "q"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if items == nil {
		items = []*model.Customer{}
	}
	writeJSON(ctx, xhttp.StatusOK, customerListResponse{Items: items, Total: len(items)})
}

func (h *CustomerHandler) GetCustomer(ctx *xhttp.RequestCtx) {
	c, err := h.customers.Get(ctx, userID(ctx), pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, c)
}

func (h *CustomerHandler) UpdateCustomer(ctx *xhttp.RequestCtx) {
	var req updateCustomerRequest
	if !readJSON(ctx, &req) {
		return
	}
	c, err := h.customers.Update(ctx, userID(ctx), pathParam(ctx, "id"), model.CustomerUpdate{Name: req.Name, Phone: req.Phone})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, c)
}

func (h *CustomerHandler) DeleteCustomer(ctx *xhttp.RequestCtx) {
	id := pathParam(ctx, "id")
	n, err := h.ledger.DeleteCustomer(ctx, userID(ctx), id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, deleteCustomerResponse{ID: id, DeletedTransactions: n})
}

func (h *CustomerHandler) GetBalance(ctx *xhttp.RequestCtx) {
	b, err := h.ledger.CustomerBalance(ctx, userID(ctx), pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, b)
}

func (h *CustomerHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	uid, id := userID(ctx), pathParam(ctx, "id")

	b, err := h.ledger.CustomerBalance(ctx, uid, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	items, err := h.history.History(ctx, uid, id, ledger.ParseDirection(query(ctx, "order")))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, transactionListResponse{Items: items, Total: len(items), Balance: b})
}
