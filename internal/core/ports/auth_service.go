package ports

import (
	"context"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
)

// LoginInput is the login body. ExpectedResult is a test affordance that can
// force a given HTTP outcome when the service allows it.
type LoginInput struct {
	UserName       string
	Password       string
	ExpectedResult int
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*domain.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context) error
	ValidateAccess(ctx context.Context, token string) (*domain.Principal, error)
}
