package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router
type Group = router.Group

// NewRouter returns a new Router
func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router with json 404/405 handlers and fixed-path redirects.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = MethodNotAllowedHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	return r
}

// NotFoundHandler is the default 404 handler
func NotFoundHandler(ctx *RequestCtx) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(StatusNotFound)
	ctx.Response.SetBodyString(`{"error":"` + StatusText(StatusNotFound) + `"}`)
}

// MethodNotAllowedHandler answers a known path hit with the wrong method.
func MethodNotAllowedHandler(ctx *RequestCtx) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(StatusMethodNotAllowed)
	ctx.Response.SetBodyString(`{"error":"` + StatusText(StatusMethodNotAllowed) + `"}`)
}
