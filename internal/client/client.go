// Package client is the typed API client shared by the CLI and web frontends.
// It owns the session state machine and the request/response contract of the
// posts API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/crucial707/blog-platform/internal/models"
)

// APIError is a non-2xx response from the server, carrying the decoded
// message and any field-level validation details.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err is a 401 from the API.
func IsAuthError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// PostList is the paginated listing envelope.
type PostList struct {
	Posts []models.Post `json:"posts"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
}

// TotalPages derives the page count from total and limit; never less than 1.
func (l *PostList) TotalPages() int {
	if l.Limit <= 0 {
		return 1
	}
	pages := (l.Total + l.Limit - 1) / l.Limit
	if pages < 1 {
		return 1
	}
	return pages
}

// Client calls the posts API with the token held by its Session. Any 401
// transitions the session to logged out before the error is returned.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *Session
}

func New(baseURL string, session *Session) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
		Session:    session,
	}
}

// Login authenticates and, on success, transitions the session to logged in.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return &APIError{StatusCode: http.StatusOK, Message: "login succeeded but no token returned"}
	}
	c.Session.Login(out.Token)
	return nil
}

func (c *Client) ListPosts(ctx context.Context, page, limit int) (*PostList, error) {
	path := "/api/posts?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
	var out PostList
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var out models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePost(ctx context.Context, title, content string) (*models.Post, error) {
	body := map[string]string{"title": title, "content": content}
	var out models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int, title, content string) (*models.Post, error) {
	body := map[string]string{"title": title, "content": content}
	var out models.Post
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+strconv.Itoa(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+strconv.Itoa(id), nil, nil)
}

// do sends one request. The bearer token is attached when the session has
// one; a 401 response logs the session out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode == http.StatusUnauthorized {
			c.Session.Logout()
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
		var wire struct {
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		}
		if json.Unmarshal(data, &wire) == nil && wire.Message != "" {
			apiErr.Message = wire.Message
			apiErr.Fields = wire.Fields
		}
		return apiErr
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
