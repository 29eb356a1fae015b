package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/blog-platform/internal/metrics"
	"github.com/crucial707/blog-platform/internal/middleware"
	"github.com/crucial707/blog-platform/internal/models"
	"github.com/crucial707/blog-platform/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// DefaultPageLimit is the page size used when the client does not send one.
const DefaultPageLimit = 6

var validate = validator.New()

type PostHandler struct {
	Repo  *repo.PostRepo
	Audit *repo.AuditRepo

	// OwnerOnly restricts update and delete to the post's author. Off by
	// default; see OWNER_ONLY_MUTATIONS.
	OwnerOnly bool
}

// postInput is the create/update request body. Fields are trimmed before the
// length rules run, so " abc " counts as 3 characters.
type postInput struct {
	Title   string `json:"title" validate:"required,min=5,max=255"`
	Content string `json:"content" validate:"required,min=10,max=500"`
}

// decodeAndValidate parses the body, trims both fields, and runs the length
// rules. Title and content are validated independently so a request can get
// one message for each.
func decodeAndValidate(r *http.Request) (postInput, map[string]string, error) {
	var input postInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return input, nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)

	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return input, nil, err
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			name := strings.ToLower(fe.Field())
			if _, seen := fields[name]; seen {
				continue
			}
			fields[name] = fieldMessage(name, fe)
		}
		return input, fields, nil
	}

	return input, nil, nil
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		min := fe.Param()
		if fe.Tag() == "required" {
			if name == "title" {
				min = strconv.Itoa(models.TitleMinLen)
			} else {
				min = strconv.Itoa(models.ContentMinLen)
			}
		}
		return fmt.Sprintf("%s must be at least %s characters long", name, min)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

//
// ==========================
// List Posts (paginated)
// ==========================
//

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := DefaultPageLimit

	if p := r.URL.Query().Get("page"); p != "" {
		if val, err := strconv.Atoi(p); err == nil && val > 0 {
			page = val
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}

	offset := (page - 1) * limit

	posts, err := h.Repo.ListPage(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list posts", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	// Total is always the full collection count, even when the requested
	// page is past the end and posts came back empty.
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		slog.Error("count posts", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"posts": posts,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

//
// ==========================
// Get Post By ID
// ==========================
//

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Post not found.", http.StatusNotFound)
			return
		}
		slog.Error("get post", "id", id, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

//
// ==========================
// Create Post
// ==========================
//

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		JSONError(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	input, fields, err := decodeAndValidate(r)
	if err != nil {
		JSONError(w, "Invalid input data.", http.StatusBadRequest)
		return
	}
	if fields != nil {
		JSONValidationError(w, "Invalid input data.", fields, http.StatusBadRequest)
		return
	}

	post, err := h.Repo.Create(r.Context(), input.Title, input.Content, identity.UserID)
	if err != nil {
		slog.Error("create post", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, identity.UserID, "create", post.ID, post.Title)
	metrics.IncPostMutations("create")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

//
// ==========================
// Update Post
// ==========================
//

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		JSONError(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	// Look the post up first: a missing post is 404 regardless of what the
	// body contains, and the ownership check needs the author.
	existing, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Post not found.", http.StatusNotFound)
			return
		}
		slog.Error("update post: lookup", "id", id, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.OwnerOnly && existing.Author.ID != identity.UserID {
		JSONError(w, "You can only modify your own posts.", http.StatusForbidden)
		return
	}

	input, fields, err := decodeAndValidate(r)
	if err != nil {
		JSONError(w, "Invalid input data.", http.StatusBadRequest)
		return
	}
	if fields != nil {
		JSONValidationError(w, "Invalid input data.", fields, http.StatusBadRequest)
		return
	}

	post, err := h.Repo.UpdateByID(r.Context(), id, input.Title, input.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Post not found.", http.StatusNotFound)
			return
		}
		slog.Error("update post", "id", id, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, identity.UserID, "update", post.ID, post.Title)
	metrics.IncPostMutations("update")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

//
// ==========================
// Delete Post
// ==========================
//

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		JSONError(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	if h.OwnerOnly {
		existing, err := h.Repo.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				JSONError(w, "Post was not found.", http.StatusNotFound)
				return
			}
			slog.Error("delete post: lookup", "id", id, "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		if existing.Author.ID != identity.UserID {
			JSONError(w, "You can only modify your own posts.", http.StatusForbidden)
			return
		}
	}

	if err := h.Repo.DeleteByID(r.Context(), id); err != nil {
		// Deleting an already-removed id reports not found, not success.
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Post was not found.", http.StatusNotFound)
			return
		}
		slog.Error("delete post", "id", id, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, identity.UserID, "delete", id, "")
	metrics.IncPostMutations("delete")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Your post has been deleted."})
}

// audit records the mutation; failures are logged, never surfaced.
func (h *PostHandler) audit(r *http.Request, userID int, action string, postID int, details string) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Log(r.Context(), userID, action, postID, details); err != nil {
		slog.Error("audit log", "action", action, "post_id", postID, "error", err)
	}
}
