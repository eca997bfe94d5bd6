package memory

import (
	"context"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
)

// passwordHash is the bcrypt hash of "password".
const passwordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

var mockAccounts = []domain.AuthUser{
	{ID: "1", UserName: "admin", PasswordHash: passwordHash, Role: "admin", Active: true},
	{ID: "2", UserName: "user", PasswordHash: passwordHash, Role: "user", Active: true},
	{ID: "3", UserName: "locked", PasswordHash: passwordHash, Role: "user", Active: false},
}

// AuthRepository serves the three fixed mock accounts.
type AuthRepository struct {
	accounts []domain.AuthUser
}

func NewAuthRepository() *AuthRepository {
	return &AuthRepository{accounts: mockAccounts}
}

func (r *AuthRepository) FindByUserName(_ context.Context, userName string) (*domain.AuthUser, error) {
	for _, a := range r.accounts {
		if a.UserName == userName {
			acc := a
			return &acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AuthRepository) FindByID(_ context.Context, id string) (*domain.AuthUser, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			acc := a
			return &acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}
