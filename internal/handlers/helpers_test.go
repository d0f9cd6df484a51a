package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/notify"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestRequireUser(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		called := false
		h := RequireUser(func(ctx *xhttp.RequestCtx) { called = true })

		ctx := &fasthttp.RequestCtx{}
		ctx.Request.SetRequestURI("/customers")
		h(ctx)

		assert.False(t, called)
		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("header present", func(t *testing.T) {
		var got string
		h := RequireUser(func(ctx *xhttp.RequestCtx) { got = userID(ctx) })

		ctx := &fasthttp.RequestCtx{}
		ctx.Request.SetRequestURI("/customers")
		ctx.Request.Header.Set(HeaderUserID, " user-9 ")
		h(ctx)

		assert.Equal(t, "user-9", got)
	})
}

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", model.NewValidationError("amount", "amount must be positive"), 400},
		{"not found", model.NewNotFoundError("customer", "c1"), 404},
		{"wrapped not found", errors.Wrap(model.NewNotFoundError("transaction", "t1"), "edit"), 404},
		{"finalized", notify.ErrDraftFinalized, 409},
		{"busy", notify.ErrDraftBusy, 409},
		{"store", model.NewStoreError("customers.create", errors.New("connection reset")), 500},
		{"unknown", errors.New("boom"), 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupTestContext("GET", "/", nil)
			writeServiceError(ctx, tc.err)
			assert.Equal(t, tc.status, ctx.Response.StatusCode())
		})
	}
}

func TestWriteServiceError_StoreErrorHidesCause(t *testing.T) {
	ctx := setupTestContext("GET", "/", nil)
	writeServiceError(ctx, model.NewStoreError("customers.create", errors.New("password authentication failed")))

	var resp errorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.NotContains(t, resp.Error, "password")
}

func TestReadJSON(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		ctx := setupTestContext("POST", "/customers", []byte("{"))
		var req createCustomerRequest
		assert.False(t, readJSON(ctx, &req))
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		ctx := setupTestContext("POST", "/customers", []byte(`{"name":"   "}`))
		var req createCustomerRequest
		assert.False(t, readJSON(ctx, &req))
		assert.Equal(t, 400, ctx.Response.StatusCode())

		var resp errorResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		require.Len(t, resp.Fields, 1)
		assert.Equal(t, "Name", resp.Fields[0].FailedField)
	})
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"05/03/2024", "2024-03-05T00:30:00+03:00", "2024-03-05T10:00:00Z"} {
		_, err = parseDate(bad)
		assert.Error(t, err, bad)
	}
}
