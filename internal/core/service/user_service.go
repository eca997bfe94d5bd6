package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/query"
	"github.com/sirpyerre/user-management-api/internal/core/reqctx"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxGenerate     = 50

	generatedSpread = 365 * 24 * time.Hour
)

var (
	generatedNames = []string{
		"Alex Thompson", "Sarah Wilson", "Michael Chen", "Emily Davis", "David Brown",
		"Lisa Anderson", "James Taylor", "Maria Garcia", "Robert Johnson", "Jennifer Lee",
		"William White", "Amanda Clark", "Christopher Hall", "Jessica Moore", "Daniel Lewis",
		"Ashley Walker", "Matthew Young", "Nicole Allen", "Joshua King", "Stephanie Wright",
	}
	generatedDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "example.com"}
)

// UserService implements the directory use cases on top of a UserRepository.
type UserService struct {
	repo            ports.UserRepository
	events          ports.EventPublisher
	logger          zerolog.Logger
	rng             *rand.Rand
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
}

// UserServiceOption customises a UserService.
type UserServiceOption func(*UserService)

// WithRand fixes the random source used by GenerateUsers.
func WithRand(rng *rand.Rand) UserServiceOption {
	return func(s *UserService) { s.rng = rng }
}

// WithPageLimits overrides the default and maximum page size.
func WithPageLimits(defaultSize, maxSize int) UserServiceOption {
	return func(s *UserService) {
		if defaultSize > 0 {
			s.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			s.maxPageSize = maxSize
		}
	}
}

func NewUserService(repo ports.UserRepository, events ports.EventPublisher, logger zerolog.Logger, opts ...UserServiceOption) *UserService {
	s := &UserService{
		repo:            repo,
		events:          events,
		logger:          logger,
		rng:             rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:             func() time.Time { return time.Now().UTC() },
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers applies filter → sort → slice. Search and role filters combine.
func (s *UserService) ListUsers(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
	page, pageSize := query.Normalize(in.Page, in.PageSize, s.defaultPageSize, s.maxPageSize)

	var (
		users []domain.User
		err   error
	)
	switch {
	case in.Search != "":
		users, err = s.repo.Search(ctx, in.Search)
		if err == nil && in.Role != "" {
			users = query.Filter(users, func(u domain.User) bool { return u.Role == in.Role })
		}
	case in.Role != "":
		users, err = s.repo.FindByRole(ctx, in.Role)
	case in.SortBy == "":
		items, total, perr := s.repo.Paginate(ctx, page, pageSize)
		if perr != nil {
			return nil, fmt.Errorf("list users: %w", perr)
		}
		s.fetched(ctx, "users", len(items))
		return &ports.ListUsersResult{Items: items, Page: query.NewPage(page, pageSize, total)}, nil
	default:
		users, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	if in.SortBy != "" {
		users = query.Sort(users, userComparator(in.SortBy), in.SortOrder)
	}
	items, meta := query.Paginate(users, page, pageSize)
	s.fetched(ctx, "users", len(items))

	return &ports.ListUsersResult{Items: items, Page: meta}, nil
}

// userComparator maps a sortBy value to a comparator; unknown fields sort by name.
func userComparator(field string) query.Comparator[domain.User] {
	switch field {
	case "email":
		return query.ByString(func(u domain.User) string { return u.Email })
	case "role":
		return query.ByString(func(u domain.User) string { return string(u.Role) })
	case "createdAt":
		return query.ByNumber(func(u domain.User) int64 { return u.CreatedAt.UnixNano() })
	default:
		return query.ByString(func(u domain.User) string { return u.Name })
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	s.fetched(ctx, "user", 1)
	return u, nil
}

func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if in.Role != "" && !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	u, err := s.repo.Create(ctx, domain.NewUser{Name: in.Name, Email: in.Email, Role: in.Role})
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", reqctx.RequestID(ctx)).Msg("failed to create user")
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("request_id", reqctx.RequestID(ctx)).Str("user_id", u.ID).Msg("user created")
	s.events.Publish(ctx, domain.EventUserCreated, *u)
	return u, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	u, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}

	s.logger.Info().Str("request_id", reqctx.RequestID(ctx)).Str("user_id", u.ID).Msg("user updated")
	s.events.Publish(ctx, domain.EventUserUpdated, *u)
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	s.logger.Info().Str("request_id", reqctx.RequestID(ctx)).Str("user_id", id).Msg("user deleted")
	s.events.Publish(ctx, domain.EventUserDeleted, map[string]any{"userId": id})
	return nil
}

// GenerateUsers appends count randomly named users with creation times
// spread over the past year.
func (s *UserService) GenerateUsers(ctx context.Context, count int) ([]domain.User, error) {
	if count < 1 || count > MaxGenerate {
		return nil, fmt.Errorf("generate users: count %d out of range 1..%d", count, MaxGenerate)
	}

	now := s.now()
	batch := make([]domain.NewUser, 0, count)
	for range count {
		name := generatedNames[s.rng.IntN(len(generatedNames))]
		mail := generatedDomains[s.rng.IntN(len(generatedDomains))]
		batch = append(batch, domain.NewUser{
			Name:      name,
			Email:     strings.ToLower(strings.Replace(name, " ", ".", 1)) + "@" + mail,
			Role:      domain.Roles[s.rng.IntN(len(domain.Roles))],
			CreatedAt: now.Add(-time.Duration(s.rng.Int64N(int64(generatedSpread)))),
		})
	}

	users, err := s.repo.CreateMany(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("generate users: %w", err)
	}

	s.logger.Info().Str("request_id", reqctx.RequestID(ctx)).Int("count", len(users)).Msg("users generated")
	for _, u := range users {
		s.events.Publish(ctx, domain.EventUserCreated, u)
	}
	return users, nil
}

func (s *UserService) Stats(ctx context.Context) (*domain.UserStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	stats := &domain.UserStats{Total: total, ByRole: make(map[domain.Role]int, len(domain.Roles))}
	for _, r := range domain.Roles {
		n, err := s.repo.CountByRole(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("count users by role %s: %w", r, err)
		}
		stats.ByRole[r] = n
	}
	return stats, nil
}

// UpdateProfile transforms the demo profile form into its display shape.
func (s *UserService) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.ProfileResult, error) {
	data := make([]string, len(in.DummyData))
	copy(data, in.DummyData)

	s.logger.Info().Str("request_id", reqctx.RequestID(ctx)).Int("items", len(data)).Msg("profile updated")

	return &domain.ProfileResult{
		Response: "Profile updated: " + in.PlaceHolder,
		DataList: data,
		Amount:   in.NumericValue,
		Tooltip:  domain.Tooltip{Header: in.FirstString, Footer: in.SecondString},
	}, nil
}

func (s *UserService) fetched(ctx context.Context, dataType string, count int) {
	s.events.Publish(ctx, domain.EventDataFetched, map[string]any{"dataType": dataType, "count": count})
}
