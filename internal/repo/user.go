package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/blog-platform/internal/models"
	"github.com/lib/pq"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, passwordHash, fullname, email string, roles []string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, fullname, email, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, password_hash, fullname, email, roles
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username, passwordHash, fullname, email, pq.StringArray(roles)).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Fullname, &user.Email, &user.Roles)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, fullname, email, roles
		FROM users
		WHERE id = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Fullname, &user.Email, &user.Roles)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, fullname, email, roles
		FROM users
		WHERE username = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Fullname, &user.Email, &user.Roles)

	if err != nil {
		return nil, err
	}

	return user, nil
}
