package client

import (
	"context"
	"net/http"
	"net/url"
)

type Localized struct {
	My string `json:"my"`
	En string `json:"en"`
	Zh string `json:"zh"`
}

type Book struct {
	ID                string    `json:"id"`
	BookName          Localized `json:"bookName"`
	BookDescription   Localized `json:"bookDescription"`
	AuthorDescription Localized `json:"authorDescription"`
	ISBN              string    `json:"isbn"`
	Author            string    `json:"author"`
	Price             float64   `json:"price"`
	Stock             int       `json:"stock"`
	Category          string    `json:"category"`
}

// BookPage is one page of GET /users/bookList.
type BookPage struct {
	Books      []Book
	Pagination Pagination
}

type ListBooksParams struct {
	Page      int
	PageSize  int
	SearchKey string
	SortBy    string
	SortOrder string
}

func (p ListBooksParams) values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "pageSize", p.PageSize)
	setString(v, "searchKey", p.SearchKey)
	setString(v, "sortBy", p.SortBy)
	setString(v, "sortOrder", p.SortOrder)
	return v
}

// ListBooks fetches one page of the demo catalogue through the cache.
func (c *Client) ListBooks(ctx context.Context, p ListBooksParams) (*BookPage, error) {
	params := p.values()
	return cached(ctx, c, OpBooks, OpBooks+"?"+params.Encode(), func(ctx context.Context) (*BookPage, error) {
		env, err := c.do(ctx, http.MethodGet, "/users/bookList", params, nil)
		if err != nil {
			return nil, err
		}
		books, err := decode[[]Book](env)
		if err != nil {
			return nil, err
		}
		page := &BookPage{Books: books}
		if env.Pagination != nil {
			page.Pagination = *env.Pagination
		}
		return page, nil
	})
}
