package ports

import (
	"context"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
)

// AuthRepository looks up login accounts.
type AuthRepository interface {
	FindByUserName(ctx context.Context, userName string) (*domain.AuthUser, error)
	FindByID(ctx context.Context, id string) (*domain.AuthUser, error)
}
