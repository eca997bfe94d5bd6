package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Operation names, used as cache key prefixes and StaleTimes keys.
const (
	OpUsers    = "users:list"
	OpUser     = "users:detail"
	OpStats    = "users:stats"
	OpBooks    = "books:list"
	OpValidate = "auth:validate"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// UserPage is one page of GET /users.
type UserPage struct {
	Users      []User
	Pagination Pagination
}

// ListUsersParams are the GET /users query parameters. Zero values are
// omitted.
type ListUsersParams struct {
	Page      int
	PageSize  int
	Search    string
	Role      string
	SortBy    string
	SortOrder string
}

func (p ListUsersParams) values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "pageSize", p.PageSize)
	setString(v, "search", p.Search)
	setString(v, "role", p.Role)
	setString(v, "sortBy", p.SortBy)
	setString(v, "sortOrder", p.SortOrder)
	return v
}

type UserStats struct {
	Total  int            `json:"total"`
	ByRole map[string]int `json:"byRole"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// UpdateUserRequest is a partial update; nil fields are not sent.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

type ProfileRequest struct {
	PlaceHolder  string      `json:"placeHolder"`
	DummyData    []string    `json:"dummyData"`
	NumericValue float64     `json:"numericValue"`
	ObjectValue  ObjectValue `json:"objectValue"`
}

type ObjectValue struct {
	FirstString  string `json:"firstString"`
	SecondString string `json:"secondString"`
}

type ProfileResult struct {
	Response string   `json:"response"`
	DataList []string `json:"dataList"`
	Amount   float64  `json:"amount"`
	Tooltip  struct {
		Header string `json:"header"`
		Footer string `json:"footer"`
	} `json:"tooltip"`
}

// ListUsers fetches one page of users through the cache.
func (c *Client) ListUsers(ctx context.Context, p ListUsersParams) (*UserPage, error) {
	params := p.values()
	return cached(ctx, c, OpUsers, OpUsers+"?"+params.Encode(), func(ctx context.Context) (*UserPage, error) {
		env, err := c.do(ctx, http.MethodGet, "/users", params, nil)
		if err != nil {
			return nil, err
		}
		users, err := decode[[]User](env)
		if err != nil {
			return nil, err
		}
		page := &UserPage{Users: users}
		if env.Pagination != nil {
			page.Pagination = *env.Pagination
		}
		return page, nil
	})
}

// GetUser fetches one user through the cache.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	return cached(ctx, c, OpUser, userKey(id), func(ctx context.Context) (*User, error) {
		env, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil)
		if err != nil {
			return nil, err
		}
		return decode[*User](env)
	})
}

// Stats fetches the per-role counts through the cache.
func (c *Client) Stats(ctx context.Context) (*UserStats, error) {
	return cached(ctx, c, OpStats, OpStats, func(ctx context.Context) (*UserStats, error) {
		env, err := c.do(ctx, http.MethodGet, "/users/stats", nil, nil)
		if err != nil {
			return nil, err
		}
		return decode[*UserStats](env)
	})
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	env, err := c.do(ctx, http.MethodPost, "/users", nil, req)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(OpUsers, OpStats)
	return decode[*User](env)
}

func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	env, err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, req)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(OpUsers, OpStats, userKey(id))
	return decode[*User](env)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(OpUsers, OpStats, userKey(id))
	return nil
}

// GenerateUsers asks the server to create count random users (1..50).
func (c *Client) GenerateUsers(ctx context.Context, count int) ([]User, error) {
	env, err := c.do(ctx, http.MethodPost, "/users/generate", nil, map[string]int{"count": count})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(OpUsers, OpStats)
	return decode[[]User](env)
}

// UpdateProfile submits the demo profile form. Nothing is cached.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileRequest) (*ProfileResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/users/updateProfile", nil, req)
	if err != nil {
		return nil, err
	}
	return decode[*ProfileResult](env)
}

func userKey(id string) string {
	return OpUser + ":" + id
}

func setInt(v url.Values, key string, n int) {
	if n != 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}
