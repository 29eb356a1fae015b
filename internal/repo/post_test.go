package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var postCols = []string{"id", "title", "content", "created_at", "id", "fullname", "email", "username"}

func TestPostRepo_ListPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	t1 := time.Date(2021, 1, 2, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY p.created_at DESC, p.id ASC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(6, 0).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(2, "Post 2", "This is the second post.", t1, 2, "User2 Demo", "user2@example.com", "user2").
			AddRow(1, "Post 1", "This is the first post.", t2, 1, "User1 Demo", "user1@example.com", "user1"))

	repo := NewPostRepo(db)
	posts, err := repo.ListPage(context.Background(), 6, 0)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ListPage returned %d posts, want 2", len(posts))
	}
	if posts[0].ID != 2 || posts[1].ID != 1 {
		t.Errorf("unexpected order: %d, %d", posts[0].ID, posts[1].ID)
	}
	if posts[0].Author.Username != "user2" {
		t.Errorf("unexpected author: %+v", posts[0].Author)
	}
	if !posts[0].CreatedAt.Equal(t1) {
		t.Errorf("unexpected created_at: %v", posts[0].CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_ListPage_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(6, 60).
		WillReturnRows(sqlmock.NewRows(postCols))

	repo := NewPostRepo(db)
	posts, err := repo.ListPage(context.Background(), 6, 60)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if posts == nil {
		t.Error("ListPage should return an empty slice, not nil")
	}
	if len(posts) != 0 {
		t.Errorf("ListPage returned %d posts, want 0", len(posts))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewPostRepo(db)
	total, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 7 {
		t.Errorf("Count: got %d, want 7", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE p.id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(1, "Post 1", "This is the first post.", created, 1, "User1 Demo", "user1@example.com", "user1"))

	repo := NewPostRepo(db)
	post, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if post.ID != 1 || post.Title != "Post 1" || post.Author.ID != 1 {
		t.Errorf("unexpected post: %+v", post)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE p.id = \$1`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	repo := NewPostRepo(db)
	_, err = repo.GetByID(context.Background(), 999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO posts \(title, content, author_id\)`).
		WithArgs("Hello World", "This is long enough.", 1).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(3, "Hello World", "This is long enough.", created, 1, "User1 Demo", "user1@example.com", "user1"))

	repo := NewPostRepo(db)
	post, err := repo.Create(context.Background(), "Hello World", "This is long enough.", 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.ID != 3 || post.Author.ID != 1 {
		t.Errorf("unexpected post: %+v", post)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_UpdateByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE posts`).
		WithArgs("New title", "New content here.", 1).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(1, "New title", "New content here.", created, 1, "User1 Demo", "user1@example.com", "user1"))

	repo := NewPostRepo(db)
	post, err := repo.UpdateByID(context.Background(), 1, "New title", "New content here.")
	if err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	// created_at and author come back untouched
	if !post.CreatedAt.Equal(created) || post.Author.ID != 1 {
		t.Errorf("update changed immutable fields: %+v", post)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_DeleteByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostRepo(db)
	if err := repo.DeleteByID(context.Background(), 1); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_DeleteByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs(999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostRepo(db)
	err = repo.DeleteByID(context.Background(), 999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for missing post, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
