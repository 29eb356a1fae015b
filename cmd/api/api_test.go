package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/blog-platform/internal/auth"
	"github.com/crucial707/blog-platform/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		JWTExpireHours: 1,
	}
}

func TestAPI_LoginThenList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword("demo")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	mock.ExpectQuery(`WHERE username = \$1`).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "fullname", "email", "roles"}).
			AddRow(1, "user1", hash, "User1 Demo", "user1@example.com", "{ROLE_USER}"))

	created := time.Date(2021, 1, 2, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(6, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "created_at", "id", "fullname", "email", "username"}).
			AddRow(2, "Post 2", "This is the second post.", created, 2, "User2 Demo", "user2@example.com", "user2"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	router := newRouter(db, testConfig())

	// Login
	loginBody := `{"username": "user1", "password": "demo"}`
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(loginBody))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("login status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var loginOut struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&loginOut); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginOut.Token == "" {
		t.Fatal("empty token")
	}

	// List with the issued token
	req = httptest.NewRequest("GET", "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("list status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var listOut struct {
		Posts []struct {
			Title  string `json:"title"`
			Author struct {
				Username string `json:"username"`
			} `json:"author"`
		} `json:"posts"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&listOut); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listOut.Page != 1 || listOut.Limit != 6 || listOut.Total != 2 {
		t.Errorf("unexpected envelope: %+v", listOut)
	}
	if len(listOut.Posts) != 1 || listOut.Posts[0].Author.Username != "user2" {
		t.Errorf("unexpected posts: %+v", listOut.Posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_MutationsRequireToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	router := newRouter(db, testConfig())

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/api/posts", ""},
		{"GET", "/api/posts/1", ""},
		{"POST", "/api/posts", `{"title": "Valid title", "content": "Valid content here."}`},
		{"PUT", "/api/posts/1", `{"title": "Valid title", "content": "Valid content here."}`},
		{"DELETE", "/api/posts/1", ""},
	}

	for _, tc := range cases {
		var body *strings.Reader
		if tc.body != "" {
			body = strings.NewReader(tc.body)
		} else {
			body = strings.NewReader("")
		}
		req := httptest.NewRequest(tc.method, tc.path, body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", tc.method, tc.path, rr.Code)
		}
		var out struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
			t.Errorf("%s %s: decode: %v", tc.method, tc.path, err)
			continue
		}
		if out.Message != "missing authorization header" {
			t.Errorf("%s %s: unexpected message %q", tc.method, tc.path, out.Message)
		}
	}

	// No query may reach the database without a valid token.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	router := newRouter(db, testConfig())

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("health status: got %d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("unexpected body: %q", rr.Body.String())
	}
}
