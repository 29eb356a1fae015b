package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_LoginTransitionsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		if in.Username != "user1" || in.Password != "demo" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials."})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "issued-token"})
	}))
	defer srv.Close()

	session := NewSession()
	c := New(srv.URL, session)

	if err := c.Login(context.Background(), "user1", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	if session.IsLoggedIn() {
		t.Error("failed login must leave the session logged out")
	}

	if err := c.Login(context.Background(), "user1", "demo"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !session.IsLoggedIn() {
		t.Error("successful login must transition to logged in")
	}
	if session.Token() != "issued-token" {
		t.Errorf("unexpected token: %q", session.Token())
	}
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"posts": []any{}, "page": 1, "limit": 6, "total": 0})
	}))
	defer srv.Close()

	c := New(srv.URL, NewSessionWithToken("stored-token"))
	if _, err := c.ListPosts(context.Background(), 1, 6); err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if gotAuth != "Bearer stored-token" {
		t.Errorf("authorization header: got %q", gotAuth)
	}
}

func TestClient_UnauthorizedLogsSessionOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
	}))
	defer srv.Close()

	session := NewSessionWithToken("stale-token")
	c := New(srv.URL, session)

	_, err := c.ListPosts(context.Background(), 1, 6)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAuthError(err) {
		t.Errorf("IsAuthError = false for %v", err)
	}
	if session.IsLoggedIn() {
		t.Error("a 401 anywhere must log the session out")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("unexpected error type: %T", err)
	}
	if apiErr.Message != "token expired" {
		t.Errorf("unexpected message: %q", apiErr.Message)
	}
}

func TestClient_ValidationFieldsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Invalid input data.",
			"fields":  map[string]string{"title": "title must be at least 5 characters long"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, NewSessionWithToken("token"))
	_, err := c.CreatePost(context.Background(), "abc", "long enough content")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("unexpected error type: %T", err)
	}
	if apiErr.Fields["title"] == "" {
		t.Errorf("field details lost: %+v", apiErr)
	}
}

func TestClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Post not found."})
	}))
	defer srv.Close()

	c := New(srv.URL, NewSessionWithToken("token"))
	_, err := c.GetPost(context.Background(), 999)
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false for %v", err)
	}
}

func TestPostList_TotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 6, 1},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{12, 6, 2},
		{13, 6, 3},
		{5, 0, 1},
	}
	for _, tc := range cases {
		l := &PostList{Total: tc.total, Limit: tc.limit}
		if got := l.TotalPages(); got != tc.want {
			t.Errorf("TotalPages(total=%d, limit=%d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
