package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/notify"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/nimasrn/customer-ledger/pkg/validator"
)

const HeaderUserID = "X-User-Id"

const userIDKey = "user_id"

type errorResponse struct {
	Error  string                     `json:"error"`
	Field  string                     `json:"field,omitempty"`
	Fields []*validator.ErrorResponse `json:"fields,omitempty"`
}

// RequireUser rejects requests without the user id header set by the auth
// proxy and makes the id available through userID.
func RequireUser(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		id := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderUserID)))
		if id == "" {
			writeError(ctx, xhttp.StatusUnauthorized, "missing "+HeaderUserID+" header")
			return
		}
		ctx.SetUserValue(userIDKey, id)
		next(ctx)
	}
}

func userID(ctx *xhttp.RequestCtx) string {
	id, _ := ctx.UserValue(userIDKey).(string)
	return id
}

func pathParam(ctx *xhttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

// readJSON decodes the body into dst and runs the struct validation tags.
func readJSON(ctx *xhttp.RequestCtx, dst any) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if errs := validator.ValidateStruct(dst); len(errs) > 0 {
		writeJSON(ctx, xhttp.StatusBadRequest, errorResponse{Error: "validation failed", Fields: errs})
		return false
	}
	return true
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, errorResponse{Error: msg})
}

// writeServiceError maps the error kinds returned by the services to status codes.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	var (
		ve *model.ValidationError
		se *model.StoreError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(ctx, xhttp.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, model.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, notify.ErrDraftFinalized), errors.Is(err, notify.ErrDraftBusy):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.As(err, &se):
		logger.Error("store failure", "op", se.Op, "error", se.Err, "path", string(ctx.Path()))
		writeError(ctx, xhttp.StatusInternalServerError, xhttp.StatusText(xhttp.StatusInternalServerError))
	default:
		logger.Error("request failed", "error", err, "path", string(ctx.Path()))
		writeError(ctx, xhttp.StatusInternalServerError, xhttp.StatusText(xhttp.StatusInternalServerError))
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD calendar day as midnight UTC. Timestamps are
// rejected, converting an offset to UTC could move them to another day.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
