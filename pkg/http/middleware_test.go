package xhttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(func(ctx *RequestCtx) {
		seen = string(ctx.Request.Header.Peek(HeaderRequestID))
	})

	t.Run("assigns an id when missing", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		h(ctx)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, string(ctx.Response.Header.Peek(HeaderRequestID)))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.Header.Set(HeaderRequestID, "abc")
		h(ctx)
		assert.Equal(t, "abc", seen)
		assert.Equal(t, "abc", string(ctx.Response.Header.Peek(HeaderRequestID)))
	})
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(ctx *RequestCtx) {
		panic("boom")
	})
	ctx := &fasthttp.RequestCtx{}
	assert.NotPanics(t, func() { h(ctx) })
	assert.Equal(t, StatusInternalServerError, ctx.Response.StatusCode())
}

func TestNotFoundHandler(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	NotFoundHandler(ctx)
	assert.Equal(t, StatusNotFound, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error":"Not Found"}`, string(ctx.Response.Body()))
}
