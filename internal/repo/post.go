package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/blog-platform/internal/models"
)

// ==========================
// PostRepo
// ==========================
type PostRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

// postColumns selects a post joined with its author. Ordering is the listing
// total order: newest first, ties broken by ascending id so two posts created
// in the same instant always come back in the same relative order.
const postColumns = `
	p.id, p.title, p.content, p.created_at,
	u.id, u.fullname, u.email, u.username
`

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	post := &models.Post{}
	var createdAt time.Time

	err := row.Scan(
		&post.ID, &post.Title, &post.Content, &createdAt,
		&post.Author.ID, &post.Author.Fullname, &post.Author.Email, &post.Author.Username,
	)
	if err != nil {
		return nil, err
	}

	post.CreatedAt = models.Timestamp{Time: createdAt}
	return post, nil
}

// ==========================
// List (paginated)
// ==========================
func (r *PostRepo) ListPage(ctx context.Context, limit, offset int) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	return posts, rows.Err()
}

// ==========================
// Count
// ==========================
func (r *PostRepo) Count(ctx context.Context) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total)
	return total, err
}

// ==========================
// Get By ID
// ==========================
func (r *PostRepo) GetByID(ctx context.Context, id int) (*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`

	return scanPost(r.DB.QueryRowContext(ctx, query, id))
}

// ==========================
// Create Post
// ==========================
func (r *PostRepo) Create(ctx context.Context, title, content string, authorID int) (*models.Post, error) {
	query := `
		WITH inserted AS (
			INSERT INTO posts (title, content, author_id)
			VALUES ($1, $2, $3)
			RETURNING id, title, content, created_at, author_id
		)
		SELECT p.id, p.title, p.content, p.created_at,
		       u.id, u.fullname, u.email, u.username
		FROM inserted p
		JOIN users u ON u.id = p.author_id
	`

	return scanPost(r.DB.QueryRowContext(ctx, query, title, content, authorID))
}

// ==========================
// Update Post (title/content only; author and created_at never change)
// ==========================
func (r *PostRepo) UpdateByID(ctx context.Context, id int, title, content string) (*models.Post, error) {
	query := `
		WITH updated AS (
			UPDATE posts
			SET title = $1, content = $2
			WHERE id = $3
			RETURNING id, title, content, created_at, author_id
		)
		SELECT p.id, p.title, p.content, p.created_at,
		       u.id, u.fullname, u.email, u.username
		FROM updated p
		JOIN users u ON u.id = p.author_id
	`

	return scanPost(r.DB.QueryRowContext(ctx, query, title, content, id))
}

// ==========================
// Delete Post
// ==========================
func (r *PostRepo) DeleteByID(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
