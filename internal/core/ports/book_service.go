package ports

import (
	"context"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/query"
)

// ListBooksInput carries the book list query parameters.
type ListBooksInput struct {
	Page      int
	PageSize  int
	SearchKey string
	SortBy    string
	SortOrder query.Order
}

// ListBooksResult is one page of books.
type ListBooksResult struct {
	Items []domain.Book
	Page  query.Page
}

type BookService interface {
	ListBooks(ctx context.Context, in ListBooksInput) (*ListBooksResult, error)
}
