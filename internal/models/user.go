package models

import "github.com/lib/pq"

// RoleUser is the default role assigned to every account.
const RoleUser = "ROLE_USER"

type User struct {
	ID           int            `json:"id"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"-"`
	Fullname     string         `json:"fullname"`
	Email        string         `json:"email"`
	Roles        pq.StringArray `json:"roles"`
}

// Author is the public subset of User embedded in post responses.
type Author struct {
	ID       int    `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Author returns the public view of the user for embedding in a post.
func (u *User) Author() Author {
	return Author{
		ID:       u.ID,
		Fullname: u.Fullname,
		Email:    u.Email,
		Username: u.Username,
	}
}
