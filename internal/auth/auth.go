package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned by token validation. Handlers map these to 401 responses
// without leaking anything that helps credential guessing.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing authorization header")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
)

// Identity is the authenticated user resolved from a bearer token.
type Identity struct {
	UserID   int
	Username string
}

// Gateway issues and validates stateless HS256 bearer tokens. There is no
// server-side session table; logout is a client-side discard.
type Gateway struct {
	secret []byte
	ttl    time.Duration
}

func NewGateway(secret string, ttl time.Duration) *Gateway {
	return &Gateway{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user with a fresh jti and an expiry of now+ttl.
func (g *Gateway) Issue(userID int, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(g.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Validate checks the token signature and expiry and returns the identity it
// encodes. The empty string maps to ErrMissingToken so callers can surface
// the absent-header case distinctly.
func (g *Gateway) Validate(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, ErrMissingToken
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	username, _ := claims["username"].(string)

	return Identity{UserID: int(userID), Username: username}, nil
}

// HashPassword returns the bcrypt hash to store for a new credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a stored bcrypt hash against a candidate password.
// Returns ErrInvalidCredentials on mismatch so the caller never reports a
// more specific reason.
func VerifyPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
