package ports

import (
	"context"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/query"
)

// ListUsersInput carries the recognised list query parameters.
type ListUsersInput struct {
	Page      int
	PageSize  int
	Search    string
	Role      domain.Role
	SortBy    string
	SortOrder query.Order
}

// ListUsersResult is one page of users.
type ListUsersResult struct {
	Items []domain.User `json:"items"`
	Page  query.Page    `json:"page"`
}

// CreateUserInput is the payload of the create endpoint.
type CreateUserInput struct {
	Name  string
	Email string
	Role  domain.Role
}

// UserService defines the directory use cases.
type UserService interface {
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	GenerateUsers(ctx context.Context, count int) ([]domain.User, error)
	Stats(ctx context.Context) (*domain.UserStats, error)
	UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.ProfileResult, error)
}
