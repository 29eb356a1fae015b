package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var userCols = []string{"id", "username", "password_hash", "fullname", "email", "roles"}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, fullname, email, roles`).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "user1", "$2a$10$hash", "User1 Demo", "user1@example.com", "{ROLE_USER}"))

	repo := NewUserRepo(db)
	user, err := repo.GetByUsername(context.Background(), "user1")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if user.ID != 1 || user.Username != "user1" || user.Fullname != "User1 Demo" {
		t.Errorf("unexpected user: %+v", user)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "ROLE_USER" {
		t.Errorf("unexpected roles: %v", user.Roles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, fullname, email, roles`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	_, err = repo.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, fullname, email, roles`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(2, "user2", "$2a$10$hash", "User2 Demo", "user2@example.com", "{ROLE_USER}"))

	repo := NewUserRepo(db)
	user, err := repo.GetByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.ID != 2 || user.Email != "user2@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users \(username, password_hash, fullname, email, roles\)`).
		WithArgs("charlie", "$2a$10$hash", "Charlie Demo", "charlie@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, "charlie", "$2a$10$hash", "Charlie Demo", "charlie@example.com", "{ROLE_USER}"))

	repo := NewUserRepo(db)
	user, err := repo.Create(context.Background(), "charlie", "$2a$10$hash", "Charlie Demo", "charlie@example.com", []string{"ROLE_USER"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 3 || user.Username != "charlie" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
