package client

import (
	"context"
	"net/http"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Principal struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Role     string `json:"role"`
}

type LoginResult struct {
	TokenPair
	User Principal `json:"user"`
}

type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
	// ExpectedResult defaults to 200 (real verification) when zero.
	ExpectedResult int `json:"expectedResult"`
}

type Session struct {
	Valid bool      `json:"valid"`
	User  Principal `json:"user"`
}

// Login authenticates and, on success, uses the access token for subsequent
// requests. Login is never retried.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.ExpectedResult == 0 {
		req.ExpectedResult = http.StatusOK
	}
	env, err := c.do(ctx, http.MethodPost, "/auth/login", nil, req)
	if err != nil {
		return nil, err
	}
	res, err := decode[*LoginResult](env)
	if err != nil {
		return nil, err
	}
	c.SetToken(res.AccessToken)
	c.cache.Invalidate(OpValidate)
	return res, nil
}

// Refresh exchanges a refresh token for a new pair and adopts the new
// access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, err
	}
	pair, err := decode[*TokenPair](env)
	if err != nil {
		return nil, err
	}
	c.SetToken(pair.AccessToken)
	c.cache.Invalidate(OpValidate)
	return pair, nil
}

// Logout notifies the server, forgets the token and empties the cache.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.SetToken("")
	c.cache.Clear()
	return err
}

// Validate checks the current access token. Results are cached per token.
func (c *Client) Validate(ctx context.Context) (*Session, error) {
	return cached(ctx, c, OpValidate, OpValidate+":"+c.Token(), func(ctx context.Context) (*Session, error) {
		env, err := c.do(ctx, http.MethodGet, "/auth/validate", nil, nil)
		if err != nil {
			return nil, err
		}
		return decode[*Session](env)
	})
}
