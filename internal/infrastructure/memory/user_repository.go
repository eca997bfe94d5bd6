// Package memory holds the process-local data stores. All state is lost on
// restart.
package memory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/query"
)

var seedUsers = []domain.NewUser{
	{Name: "John Doe", Email: "john.doe@example.com", Role: domain.RoleAdmin},
	{Name: "Jane Smith", Email: "jane.smith@example.com", Role: domain.RoleUser},
	{Name: "Bob Johnson", Email: "bob.johnson@example.com", Role: domain.RoleModerator},
	{Name: "Alice Brown", Email: "alice.brown@example.com", Role: domain.RoleUser},
	{Name: "Charlie Wilson", Email: "charlie.wilson@example.com", Role: domain.RoleUser},
	{Name: "Diana Davis", Email: "diana.davis@example.com", Role: domain.RoleModerator},
	{Name: "Edward Miller", Email: "edward.miller@example.com", Role: domain.RoleUser},
	{Name: "Fiona Garcia", Email: "fiona.garcia@example.com", Role: domain.RoleUser},
	{Name: "George Martinez", Email: "george.martinez@example.com", Role: domain.RoleUser},
	{Name: "Helen Rodriguez", Email: "helen.rodriguez@example.com", Role: domain.RoleModerator},
}

const seedSpread = 30 * 24 * time.Hour

// UserRepository is a slice-backed user store guarded by a RWMutex.
type UserRepository struct {
	mu     sync.RWMutex
	users  []domain.User
	nextID int
	now    func() time.Time
}

// Option customises a UserRepository.
type Option func(*UserRepository)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *UserRepository) { r.now = now }
}

// NewUserRepository returns an empty store.
func NewUserRepository(opts ...Option) *UserRepository {
	r := &UserRepository{nextID: 1, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewSeededUserRepository returns a store holding the ten demo users with
// creation times spread over the last 30 days.
func NewSeededUserRepository(rng *rand.Rand, opts ...Option) *UserRepository {
	r := NewUserRepository(opts...)
	for _, u := range SeedUsers(rng, r.now()) {
		r.insertLocked(u)
	}
	return r
}

// SeedUsers returns the demo users with creation times drawn from rng over
// the 30 days before now. A nil rng uses a randomly seeded source.
func SeedUsers(rng *rand.Rand, now time.Time) []domain.NewUser {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]domain.NewUser, len(seedUsers))
	for i, u := range seedUsers {
		u.CreatedAt = now.Add(-time.Duration(rng.Int64N(int64(seedSpread))))
		out[i] = u
	}
	return out
}

// insertLocked appends a record. Callers hold mu for writing (or own r).
func (r *UserRepository) insertLocked(in domain.NewUser) domain.User {
	now := r.now()
	created := in.CreatedAt
	if created.IsZero() {
		created = now
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	u := domain.User{
		ID:        fmt.Sprintf("user_%d", r.nextID),
		Name:      in.Name,
		Email:     in.Email,
		Role:      role,
		CreatedAt: created,
		UpdatedAt: now,
	}
	r.nextID++
	r.users = append(r.users, u)
	return u
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.users), nil
}

func (r *UserRepository) Paginate(_ context.Context, page, pageSize int) ([]domain.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items, meta := query.Paginate(r.users, page, pageSize)
	return items, meta.Total, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrUserNotFound
	}
	u := r.users[i]
	return &u, nil
}

func (r *UserRepository) Create(_ context.Context, in domain.NewUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.insertLocked(in)
	return &u, nil
}

func (r *UserRepository) CreateMany(_ context.Context, in []domain.NewUser) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(in))
	for _, nu := range in {
		out = append(out, r.insertLocked(nu))
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrUserNotFound
	}
	r.users[i] = patch.Apply(r.users[i], r.now())
	u := r.users[i]
	return &u, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	r.users = slices.Delete(r.users, i, i+1)
	return nil
}

func (r *UserRepository) Search(_ context.Context, q string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return query.Filter(r.users, func(u domain.User) bool {
		return query.ContainsFold(u.Name, q) ||
			query.ContainsFold(u.Email, q) ||
			query.ContainsFold(string(u.Role), q)
	}), nil
}

func (r *UserRepository) FindByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return query.Filter(r.users, func(u domain.User) bool { return u.Role == role }), nil
}

func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func (r *UserRepository) CountByRole(_ context.Context, role domain.Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// Reset restores the seed dataset.
func (r *UserRepository) Reset(rng *rand.Rand) {
	fresh := NewSeededUserRepository(rng, WithClock(r.now))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = fresh.users
	r.nextID = fresh.nextID
}

func (r *UserRepository) indexOf(id string) int {
	return slices.IndexFunc(r.users, func(u domain.User) bool { return u.ID == id })
}
