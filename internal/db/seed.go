package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// demoPassword is the password for both demo accounts.
const demoPassword = "demo"

// Seed inserts the demo users (user1, user2) and their two starter posts.
// It is a no-op when the users table already has rows, so it is safe to run
// on every startup with SEED_DEMO=true.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	users := []struct {
		username, fullname, email string
	}{
		{"user1", "User1 Demo", "user1@example.com"},
		{"user2", "User2 Demo", "user2@example.com"},
	}

	ids := make([]int, len(users))
	for i, u := range users {
		err := tx.QueryRow(
			`INSERT INTO users (username, password_hash, fullname, email, roles)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			u.username, string(hash), u.fullname, u.email, pq.StringArray{"ROLE_USER"},
		).Scan(&ids[i])
		if err != nil {
			return fmt.Errorf("seed: insert user %s: %w", u.username, err)
		}
	}

	posts := []struct {
		title, content string
		createdAt      time.Time
		author         int
	}{
		{"Post 1", "This is the first post.", time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC), ids[0]},
		{"Post 2", "This is the second post.", time.Date(2021, 1, 2, 12, 0, 0, 0, time.UTC), ids[1]},
	}
	for _, p := range posts {
		_, err := tx.Exec(
			`INSERT INTO posts (title, content, created_at, author_id) VALUES ($1, $2, $3, $4)`,
			p.title, p.content, p.createdAt, p.author,
		)
		if err != nil {
			return fmt.Errorf("seed: insert post %q: %w", p.title, err)
		}
	}

	return tx.Commit()
}
