package ports

import (
	"context"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
)

// UserRepository is the user data store. Implementations return copies;
// callers never mutate stored records through returned values.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	// Paginate returns one page in insertion order plus the total count.
	Paginate(ctx context.Context, page, pageSize int) ([]domain.User, int, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in domain.NewUser) (*domain.User, error)
	CreateMany(ctx context.Context, in []domain.NewUser) ([]domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// Search matches a case-insensitive substring of name, email or role.
	Search(ctx context.Context, query string) ([]domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}
