package client_test

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpyerre/user-management-api/internal/api"
	"github.com/sirpyerre/user-management-api/internal/core/service"
	"github.com/sirpyerre/user-management-api/internal/infrastructure/events"
	"github.com/sirpyerre/user-management-api/internal/infrastructure/memory"
	"github.com/sirpyerre/user-management-api/internal/pkg/config"
	"github.com/sirpyerre/user-management-api/pkg/client"
)

func startServer(t *testing.T) *client.Client {
	t.Helper()
	cfg, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"METRICS_ENABLED": "false",
	}))
	require.NoError(t, err)

	log := zerolog.Nop()
	bus := events.NewBus(log)
	e := api.NewRouter(api.Deps{
		Config: cfg,
		Logger: log,
		Events: bus,
		Users: service.NewUserService(
			memory.NewSeededUserRepository(rand.New(rand.NewPCG(3, 3))), bus, log),
		Books: service.NewBookService(),
		Auth: service.NewAuthService(memory.NewAuthRepository(), service.AuthConfig{
			AccessSecret:      cfg.Auth.AccessSecret,
			RefreshSecret:     cfg.Auth.RefreshSecret,
			AllowForcedResult: true,
		}, bus, log),
		Started: time.Now(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return client.New(client.Config{BaseURL: srv.URL + "/api/v1", RetryDelay: time.Millisecond})
}

func TestIntegration_UserFlow(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	page, err := c.ListUsers(ctx, client.ListUsersParams{PageSize: 4})
	require.NoError(t, err)
	assert.Len(t, page.Users, 4)
	assert.Equal(t, 10, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	u, err := c.CreateUser(ctx, client.CreateUserRequest{Name: "Grace Hopper", Email: "grace@navy.mil", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "user_11", u.ID)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, stats.Total)

	page, err = c.ListUsers(ctx, client.ListUsersParams{PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Pagination.Total, "create invalidated the cached list")

	name := "Grace B. Hopper"
	u, err = c.UpdateUser(ctx, u.ID, client.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, u.Name)

	require.NoError(t, c.DeleteUser(ctx, u.ID))
	_, err = c.GetUser(ctx, u.ID)
	assert.Equal(t, http.StatusNotFound, client.StatusOf(err))

	books, err := c.ListBooks(ctx, client.ListBooksParams{SearchKey: "西游记"})
	require.NoError(t, err)
	require.Len(t, books.Books, 1)
	assert.Equal(t, "Journey to the West", books.Books[0].BookName.En)
}

func TestIntegration_LoginScenarios(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	_, err := c.Login(ctx, client.LoginRequest{UserName: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))

	_, err = c.Login(ctx, client.LoginRequest{UserName: "locked", Password: "password"})
	assert.Equal(t, http.StatusForbidden, client.StatusOf(err))

	_, err = c.Login(ctx, client.LoginRequest{UserName: "nobody", Password: "password"})
	assert.Equal(t, http.StatusNotFound, client.StatusOf(err))

	res, err := c.Login(ctx, client.LoginRequest{UserName: "admin", Password: "password"})
	require.NoError(t, err)

	s, err := c.Validate(ctx)
	require.NoError(t, err)
	assert.True(t, s.Valid)
	assert.Equal(t, "admin", s.User.Role)

	pair, err := c.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// A refresh token is not an access token.
	c.SetToken(res.RefreshToken)
	_, err = c.Validate(ctx)
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))
}
