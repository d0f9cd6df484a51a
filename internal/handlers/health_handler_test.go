package handlers

import (
	"context"
	"encoding/json"
	"testing"

	gateway "github.com/nimasrn/customer-ledger/internal/gateways"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealth struct {
	checks map[string]string
	err    error
}

func (s stubHealth) Check(context.Context) (map[string]string, error) {
	return s.checks, s.err
}

type stubStats struct{ stats gateway.ProviderStats }

func (s stubStats) Stats() gateway.ProviderStats { return s.stats }

func TestHealthHandler_GetHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(stubHealth{checks: map[string]string{"postgres": "ok", "redis": "ok"}}, stubStats{})

		ctx := setupTestContext("GET", "/health", nil)
		h.GetHealth(ctx)

		require.Equal(t, 200, ctx.Response.StatusCode())
		var resp healthResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.NotNil(t, resp.SMS)
	})

	t.Run("dependency down", func(t *testing.T) {
		h := NewHealthHandler(stubHealth{
			checks: map[string]string{"postgres": "ok", "redis": "connection refused"},
			err:    errors.New("redis: connection refused"),
		}, nil)

		ctx := setupTestContext("GET", "/health", nil)
		h.GetHealth(ctx)

		assert.Equal(t, 503, ctx.Response.StatusCode())
	})
}
