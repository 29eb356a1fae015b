package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/crucial707/blog-platform/internal/auth"
	"github.com/crucial707/blog-platform/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// requestWithChiURLParams builds a request carrying chi URL params so handlers
// can be exercised without a full router.
func requestWithChiURLParams(method, target string, body []byte, params map[string]string) *http.Request {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches an authenticated identity, as the Auth middleware would.
func asUser(req *http.Request, id int, username string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), auth.Identity{UserID: id, Username: username}))
}
