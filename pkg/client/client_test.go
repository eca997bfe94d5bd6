package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, env map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:    srv.URL + "/api/v1",
		RetryDelay: time.Millisecond,
	})
}

func TestClient_RetriesGetOnServerError(t *testing.T) {
	var calls atomic.Int32
	var mu sync.Mutex
	var ids []string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		mu.Unlock()
		if calls.Add(1) < 3 {
			writeEnvelope(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "down"})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"total": 10, "byRole": map[string]int{"admin": 2}},
		})
	})

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, int32(3), calls.Load())

	require.Len(t, ids, 3)
	_, err = uuid.Parse(ids[0])
	assert.NoError(t, err)
	assert.Equal(t, ids[0], ids[2], "retries reuse the request id")
}

func TestClient_GivesUpAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Internal server error"})
	})

	_, err := c.Stats(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, int32(1+defaultRetryAttempts), calls.Load())
}

func TestClient_NoRetryOnAuthErrors(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeEnvelope(w, status, map[string]any{"success": false, "error": "nope"})
		})

		_, err := c.Validate(context.Background())
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, status, apiErr.Status)
		assert.Equal(t, "nope", apiErr.Message)
		assert.Equal(t, int32(1), calls.Load(), "status %d", status)
	}
}

func TestClient_RetriesOtherClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeEnvelope(w, http.StatusNotFound, map[string]any{"success": false, "error": "Resource not found"})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "user_1"}})
	})

	u, err := c.GetUser(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", u.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_MutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{"success": false})
	})

	_, err := c.CreateUser(context.Background(), CreateUserRequest{Name: "Ada", Email: "ada@example.com"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ValidationErrorDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Validation error",
			"details": []map[string]any{{"field": "email", "message": "email must be a valid email"}},
		})
	})

	_, err := c.CreateUser(context.Background(), CreateUserRequest{Name: "Ada", Email: "bad"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Validation error", apiErr.Message)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "email", apiErr.Details[0].Field)
}

func TestClient_ListCachesAndMutationInvalidates(t *testing.T) {
	var lists, stats atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/users":
			lists.Add(1)
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success":    true,
				"data":       []map[string]any{{"id": "user_11", "name": "Ada"}},
				"pagination": map[string]any{"page": 2, "pageSize": 10, "total": 11, "totalPages": 2, "hasPrev": true},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/users/stats":
			stats.Add(1)
			writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"total": 11}})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		page, err := c.ListUsers(ctx, ListUsersParams{Page: 2})
		require.NoError(t, err)
		require.Len(t, page.Users, 1)
		assert.Equal(t, 11, page.Pagination.Total)
		assert.True(t, page.Pagination.HasPrev)
	}
	_, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), lists.Load())
	assert.Equal(t, int32(1), stats.Load())

	require.NoError(t, c.DeleteUser(ctx, "user_11"))

	_, err = c.ListUsers(ctx, ListUsersParams{Page: 2})
	require.NoError(t, err)
	_, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), lists.Load())
	assert.Equal(t, int32(2), stats.Load())
}

func TestClient_LoginSetsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(200), body["expectedResult"])
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"accessToken":  "acc",
					"refreshToken": "ref",
					"user":         map[string]any{"id": "1", "userName": "admin", "role": "admin"},
				},
			})
		case "/api/v1/auth/validate":
			if r.Header.Get("Authorization") != "Bearer acc" {
				writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false})
				return
			}
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"valid": true, "user": map[string]any{"id": "1"}},
			})
		case "/api/v1/auth/logout":
			writeEnvelope(w, http.StatusOK, map[string]any{"success": true})
		}
	})
	ctx := context.Background()

	res, err := c.Login(ctx, LoginRequest{UserName: "admin", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "admin", res.User.UserName)
	assert.Equal(t, "acc", c.Token())

	s, err := c.Validate(ctx)
	require.NoError(t, err)
	assert.True(t, s.Valid)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())
	assert.Equal(t, 0, c.Cache().Len())

	_, err = c.Validate(ctx)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestClient_StaleTimeOverrides(t *testing.T) {
	c := New(Config{StaleTimes: map[string]time.Duration{OpBooks: time.Second}})

	assert.Equal(t, time.Second, c.stale[OpBooks])
	assert.Equal(t, defaultStatsStaleTime, c.stale[OpStats])
	assert.Equal(t, defaultStaleTime, c.stale[OpUsers])
}

func TestClient_Backoff(t *testing.T) {
	c := New(Config{RetryDelay: time.Second, MaxRetryDelay: 5 * time.Second})

	assert.Equal(t, time.Second, c.backoff(1))
	assert.Equal(t, 2*time.Second, c.backoff(2))
	assert.Equal(t, 4*time.Second, c.backoff(3))
	assert.Equal(t, 5*time.Second, c.backoff(4))
}
