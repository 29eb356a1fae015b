package main

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/blog-platform/internal/client"
	"github.com/crucial707/blog-platform/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "blog_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080"
	envWebPort  = "BLOG_WEB_PORT"
	envAPIURL   = "BLOG_API_URL"

	// pageSize mirrors the listing default; Prev/Next navigation derives
	// total pages from the API's total count.
	pageSize = 6
)

// app carries the per-process dependencies every view needs. The session is
// rebuilt per request from the cookie; nothing auth-related lives in a global.
type app struct {
	apiBase   string
	templates *template.Template
}

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		log.Fatalf("parse templates: %v", err)
	}

	a := &app{apiBase: apiBase, templates: tmpl}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/login", a.loginForm)
	r.Post("/login", a.loginSubmit)
	r.Get("/logout", a.logout)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/posts", http.StatusFound)
		})
		r.Get("/posts", a.postsList)
		r.Get("/posts/create", a.postCreateForm)
		r.Post("/posts/create", a.postCreate)
		r.Get("/posts/{id}", a.postDetail)
		r.Get("/posts/{id}/edit", a.postEditForm)
		r.Post("/posts/{id}/edit", a.postUpdate)
		r.Post("/posts/{id}/delete", a.postDelete)
	})

	log.Printf("Web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// clientFor builds an API client whose session is restored from the request
// cookie. Logged-out requests get an empty session.
func (a *app) clientFor(r *http.Request) *client.Client {
	token := ""
	if c, err := r.Cookie(cookieName); err == nil {
		token = c.Value
	}
	return client.New(a.apiBase, client.NewSessionWithToken(token))
}

// requireAuth gates every protected view on session state: no cookie means
// straight to the login view, remembering where the user was headed.
func (a *app) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := a.clientFor(r)
		if !c.Session.IsLoggedIn() {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clearAuthAndRedirectToLogin clears the token cookie and redirects to login with next=current path.
// Call when the API returns 401 (expired or invalid token) so the user can sign in again.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

func (a *app) render(w http.ResponseWriter, name string, data interface{}) {
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// ====== Login / logout ======

func (a *app) loginForm(w http.ResponseWriter, r *http.Request) {
	// Already logged in: the login view redirects away.
	if a.clientFor(r).Session.IsLoggedIn() {
		http.Redirect(w, r, "/posts", http.StatusFound)
		return
	}
	a.render(w, "login.html", map[string]interface{}{"Username": ""})
}

func (a *app) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	c := client.New(a.apiBase, client.NewSession())
	if err := c.Login(r.Context(), username, password); err != nil {
		msg := "Login failed"
		if apiErr, ok := err.(*client.APIError); ok {
			msg = apiErr.Message
		}
		a.render(w, "login.html", map[string]interface{}{"Error": msg, "Username": username})
		return
	}

	next := r.URL.Query().Get("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/posts"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    c.Session.Token(),
		Path:     "/",
		MaxAge:   24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, next, http.StatusFound)
}

func (a *app) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// ====== Posts list ======

type postView struct {
	ID      int
	Title   string
	Content string
	Author  string
	Created string
}

func toPostView(p models.Post) postView {
	return postView{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Author:  p.Author.Fullname,
		Created: p.CreatedAt.Format("Jan 2, 2006"),
	}
}

func (a *app) postsList(w http.ResponseWriter, r *http.Request) {
	c := a.clientFor(r)

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}

	list, err := c.ListPosts(r.Context(), page, pageSize)
	if err != nil {
		if client.IsAuthError(err) {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		a.render(w, "posts.html", map[string]interface{}{"Error": err.Error(), "Page": page, "TotalPages": 1})
		return
	}

	views := make([]postView, 0, len(list.Posts))
	for _, p := range list.Posts {
		views = append(views, toPostView(p))
	}

	totalPages := list.TotalPages()
	prevPage := 0
	if page > 1 {
		prevPage = page - 1
	}
	nextPage := 0
	if page < totalPages {
		nextPage = page + 1
	}

	a.render(w, "posts.html", map[string]interface{}{
		"Posts":      views,
		"Page":       page,
		"TotalPages": totalPages,
		"PrevPage":   prevPage,
		"NextPage":   nextPage,
		"Total":      list.Total,
		"Notice":     r.URL.Query().Get("notice"),
	})
}

// ====== Post detail ======

func (a *app) postDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/posts", http.StatusFound)
		return
	}

	c := a.clientFor(r)
	post, err := c.GetPost(r.Context(), id)
	if err != nil {
		if client.IsAuthError(err) {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		// A missing post sends the user back to the list with a notice.
		if client.IsNotFound(err) {
			http.Redirect(w, r, "/posts?notice="+url.QueryEscape("Post not found."), http.StatusFound)
			return
		}
		a.render(w, "post_detail.html", map[string]interface{}{"Error": err.Error()})
		return
	}

	a.render(w, "post_detail.html", map[string]interface{}{
		"Post":      toPostView(*post),
		"CreatedAt": post.CreatedAt.Format(time.RFC1123),
		"Email":     post.Author.Email,
	})
}

// ====== Post create/edit/delete ======

func (a *app) postCreateForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, "post_form.html", map[string]interface{}{
		"FormAction":  "/posts/create",
		"SubmitLabel": "Create post",
	})
}

func (a *app) postCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	title := r.FormValue("title")
	content := r.FormValue("content")

	// Client-side duplicate of the server rules for responsiveness; the API
	// remains the authority.
	if fields := validateInput(title, content); len(fields) > 0 {
		a.render(w, "post_form.html", map[string]interface{}{
			"Fields":      fields,
			"Title":       title,
			"Content":     content,
			"FormAction":  "/posts/create",
			"SubmitLabel": "Create post",
		})
		return
	}

	c := a.clientFor(r)
	post, err := c.CreatePost(r.Context(), title, content)
	if err != nil {
		if client.IsAuthError(err) {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		a.render(w, "post_form.html", map[string]interface{}{
			"Error":       errMessage(err),
			"Fields":      errFields(err),
			"Title":       title,
			"Content":     content,
			"FormAction":  "/posts/create",
			"SubmitLabel": "Create post",
		})
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.Itoa(post.ID), http.StatusFound)
}

func (a *app) postEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/posts", http.StatusFound)
		return
	}

	c := a.clientFor(r)
	post, err := c.GetPost(r.Context(), id)
	if err != nil {
		if client.IsAuthError(err) {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if client.IsNotFound(err) {
			http.Redirect(w, r, "/posts?notice="+url.QueryEscape("Post not found."), http.StatusFound)
			return
		}
		a.render(w, "post_form.html", map[string]interface{}{"Error": err.Error()})
		return
	}

	a.render(w, "post_form.html", map[string]interface{}{
		"Title":       post.Title,
		"Content":     post.Content,
		"FormAction":  "/posts/" + strconv.Itoa(id) + "/edit",
		"SubmitLabel": "Save changes",
	})
}

func (a *app) postUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/posts", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	title := r.FormValue("title")
	content := r.FormValue("content")
	action := "/posts/" + strconv.Itoa(id) + "/edit"

	if fields := validateInput(title, content); len(fields) > 0 {
		a.render(w, "post_form.html", map[string]interface{}{
			"Fields":      fields,
			"Title":       title,
			"Content":     content,
			"FormAction":  action,
			"SubmitLabel": "Save changes",
		})
		return
	}

	c := a.clientFor(r)
	post, err := c.UpdatePost(r.Context(), id, title, content)
	if err != nil {
		if client.IsAuthError(err) {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if client.IsNotFound(err) {
			http.Redirect(w, r, "/posts?notice="+url.QueryEscape("Post not found."), http.StatusFound)
			return
		}
		a.render(w, "post_form.html", map[string]interface{}{
			"Error":       errMessage(err),
			"Fields":      errFields(err),
			"Title":       title,
			"Content":     content,
			"FormAction":  action,
			"SubmitLabel": "Save changes",
		})
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.Itoa(post.ID), http.StatusFound)
}

func (a *app) postDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/posts", http.StatusFound)
		return
	}

	c := a.clientFor(r)
	if err := c.DeletePost(r.Context(), id); err != nil {
		if client.IsAuthError(err) {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		http.Redirect(w, r, "/posts?notice="+url.QueryEscape(errMessage(err)), http.StatusFound)
		return
	}

	http.Redirect(w, r, "/posts?notice="+url.QueryEscape("Your post has been deleted."), http.StatusFound)
}

// validateInput mirrors the API's trim-then-length rules.
func validateInput(title, content string) map[string]string {
	fields := map[string]string{}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	switch {
	case len([]rune(title)) < models.TitleMinLen:
		fields["title"] = "Title must be at least 5 characters long"
	case len([]rune(title)) > models.TitleMaxLen:
		fields["title"] = "Title must be at most 255 characters long"
	}
	switch {
	case len([]rune(content)) < models.ContentMinLen:
		fields["content"] = "Content must be at least 10 characters long"
	case len([]rune(content)) > models.ContentMaxLen:
		fields["content"] = "Content must be at most 500 characters long"
	}
	return fields
}

func errMessage(err error) string {
	if apiErr, ok := err.(*client.APIError); ok {
		return apiErr.Message
	}
	return err.Error()
}

func errFields(err error) map[string]string {
	if apiErr, ok := err.(*client.APIError); ok {
		return apiErr.Fields
	}
	return nil
}
