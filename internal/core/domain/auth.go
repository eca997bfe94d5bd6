package domain

import (
	"errors"
	"fmt"
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
)

// AuthUser is a mock login account. It is unrelated to the User directory.
type AuthUser struct {
	ID           string `json:"id"`
	UserName     string `json:"userName"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Active       bool   `json:"isActive"`
}

// TokenPair is issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Principal is the identity extracted from a verified token.
type Principal struct {
	UserID   string    `json:"id"`
	UserName string    `json:"userName"`
	Role     string    `json:"role"`
	Type     TokenType `json:"-"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	TokenPair
	User Principal `json:"user"`
}

// ForcedStatusError short-circuits a login to an operator-selected HTTP status.
type ForcedStatusError struct {
	Status  int
	Message string
}

func (e *ForcedStatusError) Error() string {
	return fmt.Sprintf("forced login result %d: %s", e.Status, e.Message)
}
